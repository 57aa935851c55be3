package service

import (
	"github.com/smartcity/cityapi/internal/domain"
)

// DataRepository is re-exported from domain for convenience
type DataRepository = domain.DataRepository

// MaxHistoryHours bounds archive lookbacks (30 days)
const MaxHistoryHours = 720

func checkHistoryHours(hours int) error {
	if hours < 1 || hours > MaxHistoryHours {
		return invalidf("Hours must be between 1 and %d", MaxHistoryHours)
	}
	return nil
}
