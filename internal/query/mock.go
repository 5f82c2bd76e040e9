package query

import "context"

// MockService permite tests sin un QueryService real.
type MockService struct {
	Answer Answer
	Err    error
	Calls  int
}

func (m *MockService) Ask(_ context.Context, _, _ string) (Answer, error) {
	m.Calls++
	return m.Answer, m.Err
}

func (m *MockService) Healthy(_ context.Context) bool {
	return m.Err == nil
}
