package contract

import (
	"context"

	"github.com/huangsam/asmstats/schema"
	"github.com/stretchr/testify/mock"
)

// MockReportSource is a mock implementation of ReportSource for testing.
type MockReportSource struct {
	mock.Mock
}

var _ ReportSource = &MockReportSource{} // Compile-time check

// ByAccession implements the ReportSource interface.
func (m *MockReportSource) ByAccession(ctx context.Context, accessions []string, pageSize int) (schema.LookupResult, error) {
	args := m.Called(ctx, accessions, pageSize)
	return args.Get(0).(schema.LookupResult), args.Error(1)
}

// ByTaxon implements the ReportSource interface.
func (m *MockReportSource) ByTaxon(ctx context.Context, taxa []string, pageSize int) (schema.LookupResult, error) {
	args := m.Called(ctx, taxa, pageSize)
	return args.Get(0).(schema.LookupResult), args.Error(1)
}
