package conversation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlots_MergeKeepsKnownValues(t *testing.T) {
	base := Slots{Name: "Alice", Date: "2025-06-02", Guests: intPtr(2)}
	merged := base.Merge(Slots{Date: "2025-06-03", Time: "19:00"})

	assert.Equal(t, "Alice", merged.Name)
	assert.Equal(t, "2025-06-03", merged.Date)
	assert.Equal(t, "19:00", merged.Time)
	assert.Equal(t, 2, *merged.Guests)
}

func TestSlots_MergeCopiesGuests(t *testing.T) {
	update := Slots{Guests: intPtr(5)}
	merged := Slots{}.Merge(update)
	*update.Guests = 9
	assert.Equal(t, 5, *merged.Guests)
}

func TestSlots_Missing(t *testing.T) {
	assert.Equal(t, requiredSlots, Slots{}.Missing())
	assert.Equal(t, []string{SlotContact, SlotGuests}, Slots{Name: "A", Date: "d", Time: "t"}.Missing())
	assert.Empty(t, Slots{Name: "A", Contact: "c", Date: "d", Time: "t", Guests: intPtr(1)}.Missing())
}

func TestSlots_EmptyAndFields(t *testing.T) {
	assert.True(t, Slots{}.Empty())
	assert.False(t, Slots{SpecialRequirements: "vegan"}.Empty())

	f := Slots{Name: "A", Guests: intPtr(3)}.Fields()
	assert.Equal(t, 3, f.Guests)
	assert.Equal(t, 0, Slots{}.Fields().Guests)
}
