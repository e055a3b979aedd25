package score

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/nestory/nestory/internal/domain"
)

func all() Signals {
	return Signals{true, true, true, true, true, true}
}

func TestEvaluate_AllPresent(t *testing.T) {
	res := Evaluate(all())
	assert.Equal(t, 1.0, res.Score)
	assert.Empty(t, res.Missing)
	assert.True(t, res.Complete())
	assert.Equal(t, 100, res.Percent())
}

func TestEvaluate_NonePresent(t *testing.T) {
	res := Evaluate(Signals{})
	assert.Equal(t, 0.0, res.Score)
	assert.Equal(t, []Field{
		FieldPhoto, FieldValue, FieldRoom, FieldCategory, FieldReceipt, FieldSerialNumber,
	}, res.Missing)
}

func TestWeightsSumToOne(t *testing.T) {
	var total float64
	for _, f := range Fields() {
		total += Weight(f)
	}
	assert.InDelta(t, 1.0, total, 1e-9)
}

func TestEvaluate_Monotonic(t *testing.T) {
	setters := map[Field]func(*Signals){
		FieldPhoto:        func(s *Signals) { s.HasPhoto = true },
		FieldValue:        func(s *Signals) { s.HasValue = true },
		FieldRoom:         func(s *Signals) { s.HasRoom = true },
		FieldCategory:     func(s *Signals) { s.HasCategory = true },
		FieldReceipt:      func(s *Signals) { s.HasReceipt = true },
		FieldSerialNumber: func(s *Signals) { s.HasSerialNumber = true },
	}

	base := Signals{HasRoom: true}
	before := Evaluate(base)
	for f, set := range setters {
		if f == FieldRoom {
			continue
		}
		s := base
		set(&s)
		after := Evaluate(s)
		assert.InDelta(t, before.Score+Weight(f), after.Score, 1e-9, "field %s", f)
		assert.NotContains(t, after.Missing, f)
		assert.Len(t, after.Missing, len(before.Missing)-1)
	}
}

func TestEvaluate_MissingOrderIsFixed(t *testing.T) {
	res := Evaluate(Signals{HasValue: true, HasCategory: true})
	assert.Equal(t, []Field{FieldPhoto, FieldRoom, FieldReceipt, FieldSerialNumber}, res.Missing)
	assert.InDelta(t, 0.35, res.Score, 1e-9)
}

func TestSignalsOf(t *testing.T) {
	room := "room-1"
	item := &domain.Item{
		PhotoKeys:     []string{"item_a_1.jpg"},
		PurchasePrice: decimal.NewNullDecimal(decimal.RequireFromString("499.99")),
		RoomID:        &room,
		SerialNumber:  "   ",
	}

	s := SignalsOf(item)
	assert.True(t, s.HasPhoto)
	assert.True(t, s.HasValue)
	assert.True(t, s.HasRoom)
	assert.False(t, s.HasCategory)
	assert.False(t, s.HasReceipt)
	assert.False(t, s.HasSerialNumber, "blank serial counts as missing")

	res := EvaluateItem(item)
	assert.InDelta(t, 0.70, res.Score, 1e-9)
	assert.Equal(t, 70, res.Percent())
}

func TestSummarize(t *testing.T) {
	results := []Result{
		Evaluate(all()),
		Evaluate(Signals{}),
		Evaluate(Signals{HasPhoto: true}),
	}

	sum := Summarize(results)
	assert.Equal(t, 3, sum.Items)
	assert.Equal(t, 1, sum.FullyDocumented)
	assert.InDelta(t, (1.0+0+0.3)/3, sum.AverageScore, 1e-4)
	assert.Equal(t, 1, sum.MissingCounts[FieldPhoto])
	assert.Equal(t, 2, sum.MissingCounts[FieldValue])
}

func TestSummarize_Empty(t *testing.T) {
	sum := Summarize(nil)
	assert.Zero(t, sum.Items)
	assert.Zero(t, sum.AverageScore)
}
