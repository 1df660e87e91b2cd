package service

import (
	"net/http"
	"testing"

	"github.com/RenatoWlk/projeto-aplicado-II/cmd/internal/utils/apierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishAvailabilityRejectsBadInput(t *testing.T) {
	env := newTestEnv(t)
	env.seedBank(t, "bank-1")

	cases := []struct {
		name string
		req  *PublishAvailabilityRequest
	}{
		{"missing bank id", &PublishAvailabilityRequest{
			Availability: []DailyAvailabilityRequest{{Date: "2026-09-10", Slots: []SlotRequest{{Time: "09:00", AvailableSpots: 1}}}},
		}},
		{"empty availability", &PublishAvailabilityRequest{BloodBankID: "bank-1"}},
		{"day without slots", &PublishAvailabilityRequest{
			BloodBankID:  "bank-1",
			Availability: []DailyAvailabilityRequest{{Date: "2026-09-10"}},
		}},
		{"malformed hour", &PublishAvailabilityRequest{
			BloodBankID:  "bank-1",
			Availability: []DailyAvailabilityRequest{{Date: "2026-09-10", Slots: []SlotRequest{{Time: "9am", AvailableSpots: 1}}}},
		}},
		{"zero spots", &PublishAvailabilityRequest{
			BloodBankID:  "bank-1",
			Availability: []DailyAvailabilityRequest{{Date: "2026-09-10", Slots: []SlotRequest{{Time: "09:00"}}}},
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			apierr := env.avail.PublishAvailability(tc.req)
			require.NotNil(t, apierr)
			assert.Equal(t, http.StatusBadRequest, apierr.Code())
		})
	}
}

func TestPublishAvailabilityUnknownBank(t *testing.T) {
	env := newTestEnv(t)

	apierr := env.avail.PublishAvailability(&PublishAvailabilityRequest{
		BloodBankID:  "nope",
		Availability: []DailyAvailabilityRequest{{Date: "2026-09-10", Slots: []SlotRequest{{Time: "09:00", AvailableSpots: 1}}}},
	})
	assert.Equal(t, apierror.BloodBankNotFoundError, apierr)
}

func TestPublishAvailabilityInvalidDate(t *testing.T) {
	env := newTestEnv(t)
	env.seedBank(t, "bank-1")

	apierr := env.avail.PublishAvailability(&PublishAvailabilityRequest{
		BloodBankID:  "bank-1",
		Availability: []DailyAvailabilityRequest{{Date: "next tuesday", Slots: []SlotRequest{{Time: "09:00", AvailableSpots: 1}}}},
	})
	assert.Equal(t, apierror.InvalidDateError, apierr)
}

func TestGetAvailabilityListsCalendarInOrder(t *testing.T) {
	env := newTestEnv(t)
	env.seedBank(t, "bank-1")
	env.publish(t, "bank-1", "2026-09-11", SlotRequest{Time: "10:00", AvailableSpots: 2})
	env.publish(t, "bank-1", "2026-09-10",
		SlotRequest{Time: "09:00", AvailableSpots: 3},
		SlotRequest{Time: "14:00", AvailableSpots: 1},
	)

	entries, apierr := env.avail.GetAvailability("bank-1")
	require.Nil(t, apierr)
	require.Len(t, entries, 2)
	assert.Equal(t, "2026-09-11", entries[0].Date)
	assert.Equal(t, "2026-09-10", entries[1].Date)
	require.Len(t, entries[1].Slots, 2)
	assert.Equal(t, "09:00", entries[1].Slots[0].Time)
	assert.Equal(t, 3, entries[1].Slots[0].TotalSpots)
	assert.Equal(t, 0, entries[1].Slots[0].BookedSpots)
}

func TestGetAvailabilityUnknownBank(t *testing.T) {
	env := newTestEnv(t)

	_, apierr := env.avail.GetAvailability("nope")
	assert.Equal(t, apierror.BloodBankNotFoundError, apierr)
}

func TestGetAvailableSlotsForDateEmptyWhenNothingPublished(t *testing.T) {
	env := newTestEnv(t)
	env.seedBank(t, "bank-1")

	view, apierr := env.avail.GetAvailableSlotsForDate("bank-1", "2026-09-10")
	require.Nil(t, apierr)
	assert.Equal(t, "2026-09-10", view.Date)
	assert.Empty(t, view.Slots)
}

func TestGetAvailableSlotsForDateCountsLiveBookings(t *testing.T) {
	env := newTestEnv(t)
	env.seedDonor(t, "user-1", "AB+")
	env.seedDonor(t, "user-2", "AB+")
	env.seedBank(t, "bank-1")
	env.publish(t, "bank-1", "2026-09-10",
		SlotRequest{Time: "09:00", AvailableSpots: 2},
		SlotRequest{Time: "10:00", AvailableSpots: 4},
	)

	env.book(t, "user-1", "bank-1", "2026-09-10", "09:00")
	env.book(t, "user-2", "bank-1", "2026-09-10", "09:00")

	view, apierr := env.avail.GetAvailableSlotsForDate("bank-1", "2026-09-10")
	require.Nil(t, apierr)
	require.Len(t, view.Slots, 2)
	assert.Equal(t, SlotResponse{Time: "09:00", TotalSpots: 2, BookedSpots: 2, AvailableSpots: 0}, view.Slots[0])
	assert.Equal(t, SlotResponse{Time: "10:00", TotalSpots: 4, BookedSpots: 0, AvailableSpots: 4}, view.Slots[1])
}

// A cancelled donation leaves the live count immediately, so the view frees
// the spot without waiting on anything else.
func TestGetAvailableSlotsForDateIgnoresCancelled(t *testing.T) {
	env := newTestEnv(t)
	env.seedDonor(t, "user-1", "A-")
	env.seedBank(t, "bank-1")
	env.publish(t, "bank-1", "2026-09-10", SlotRequest{Time: "09:00", AvailableSpots: 1})

	donation := env.book(t, "user-1", "bank-1", "2026-09-10", "09:00")
	_, apierr := env.svc.CancelDonation(donation.ID, "user-1", "")
	require.Nil(t, apierr)

	view, apierr := env.avail.GetAvailableSlotsForDate("bank-1", "2026-09-10")
	require.Nil(t, apierr)
	require.Len(t, view.Slots, 1)
	assert.Equal(t, 1, view.Slots[0].AvailableSpots)
	assert.Equal(t, 0, view.Slots[0].BookedSpots)
}

func TestCheckSlotAvailability(t *testing.T) {
	env := newTestEnv(t)
	env.seedDonor(t, "user-1", "O+")
	env.seedBank(t, "bank-1")
	env.publish(t, "bank-1", "2026-09-10", SlotRequest{Time: "09:00", AvailableSpots: 1})

	check, apierr := env.avail.CheckSlotAvailability("bank-1", "2026-09-10", "09:00")
	require.Nil(t, apierr)
	assert.True(t, check.Available)
	assert.Equal(t, 0, check.SlotsUsed)
	assert.Equal(t, 1, check.SlotsRemaining)

	env.book(t, "user-1", "bank-1", "2026-09-10", "09:00")

	check, apierr = env.avail.CheckSlotAvailability("bank-1", "2026-09-10", "09:00")
	require.Nil(t, apierr)
	assert.False(t, check.Available)
	assert.Equal(t, 1, check.SlotsUsed)
	assert.Equal(t, 0, check.SlotsRemaining)
}

func TestCheckSlotAvailabilityUnpublishedHour(t *testing.T) {
	env := newTestEnv(t)
	env.seedBank(t, "bank-1")
	env.publish(t, "bank-1", "2026-09-10", SlotRequest{Time: "09:00", AvailableSpots: 1})

	_, apierr := env.avail.CheckSlotAvailability("bank-1", "2026-09-10", "15:00")
	assert.Equal(t, apierror.SlotNotFoundError, apierr)

	_, apierr = env.avail.CheckSlotAvailability("bank-1", "2026-09-12", "09:00")
	assert.Equal(t, apierror.SlotNotFoundError, apierr)
}

// Publishing the same date twice appends a second calendar entry instead of
// merging; date lookups keep resolving to the earliest entry.
func TestPublishSameDateTwiceKeepsFirstEntryForLookups(t *testing.T) {
	env := newTestEnv(t)
	env.seedDonor(t, "user-1", "B-")
	env.seedBank(t, "bank-1")
	env.publish(t, "bank-1", "2026-09-10", SlotRequest{Time: "09:00", AvailableSpots: 1})
	env.publish(t, "bank-1", "2026-09-10", SlotRequest{Time: "11:00", AvailableSpots: 5})

	entries, apierr := env.avail.GetAvailability("bank-1")
	require.Nil(t, apierr)
	assert.Len(t, entries, 2)

	view, apierr := env.avail.GetAvailableSlotsForDate("bank-1", "2026-09-10")
	require.Nil(t, apierr)
	require.Len(t, view.Slots, 1)
	assert.Equal(t, "09:00", view.Slots[0].Time)

	// Bookings resolve against the same first entry.
	_, slotErr := env.svc.CreateDonation("user-1", &CreateDonationRequest{
		BloodBankID: "bank-1", Date: "2026-09-10", Hour: "11:00",
	})
	assert.Equal(t, apierror.SlotNotFoundError, slotErr)
}
