package integration

import "errors"

var (
	// Transport errors returned by the AM.net adapter
	ErrAMNetNotConfigured   = errors.New("integration: AM.net client not configured")
	ErrAMNetUnavailable     = errors.New("integration: AM.net temporarily unavailable")
	ErrAMNetRequestFailed   = errors.New("integration: AM.net request failed")
	ErrAMNetInvalidResponse = errors.New("integration: invalid AM.net response")
	ErrAMNetAuthFailed      = errors.New("integration: AM.net authentication failed")
	ErrAMNetNotFound        = errors.New("integration: AM.net record not found")

	// ErrRecordExcluded is returned when an AM.net person is flagged as
	// excluded from web sync. Callers are expected to skip the record.
	ErrRecordExcluded = errors.New("integration: AM.net record excluded from sync")
)
