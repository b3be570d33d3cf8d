package logging

import "github.com/groundwater-portal/reportload/pkg/reportload"

// NullLogger drops every message.
type NullLogger struct{}

func NewNullLogger() *NullLogger { return &NullLogger{} }

func (*NullLogger) Verbose(string, ...interface{}) {}
func (*NullLogger) Info(string, ...interface{})    {}
func (*NullLogger) Error(string, ...interface{})   {}

var (
	_ reportload.Logger = (*NullLogger)(nil)
	_ reportload.Logger = (*ConsoleLogger)(nil)
)
