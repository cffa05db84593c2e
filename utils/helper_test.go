package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDateHelpers(t *testing.T) {
	noon := time.Date(2026, 1, 31, 12, 45, 0, 0, time.FixedZone("CST", 8*3600))
	require.Equal(t, time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC), ToDate(noon))
	require.Equal(t, "2026-02-14", AddDays(noon, 14).Format(DateLayout))
	require.Equal(t, "2026-01-17", AddDays(noon, -14).Format(DateLayout))

	today := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	require.Equal(t, "2026-03-01", DateOrToday(nil, today).Format(DateLayout))
	require.Equal(t, "2026-03-01", DateOrToday(&time.Time{}, today).Format(DateLayout))
	require.Equal(t, "2026-01-31", DateOrToday(&noon, today).Format(DateLayout))
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2026-02-28")
	require.NoError(t, err)
	require.Equal(t, "2026-02-28", FormatDate(d))

	d, err = ParseDate("  ")
	require.NoError(t, err)
	require.Nil(t, d)
	require.Equal(t, "", FormatDate(d))

	_, err = ParseDate("28/02/2026")
	require.Error(t, err)
}

func TestValidateContact(t *testing.T) {
	require.NoError(t, ValidateContact("", "CN"))
	require.NoError(t, ValidateContact("owner@example.com", "CN"))
	require.Error(t, ValidateContact("owner@", "CN"))
	require.NoError(t, ValidateContact("+1 650-253-0000", "CN"))
	require.Error(t, ValidateContact("12", "CN"))
}
