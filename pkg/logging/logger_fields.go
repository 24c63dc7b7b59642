package logging

import (
	"time"
)

// Common field constructors
func String(key, value string) Field {
	return Field{Key: key, Value: value}
}

func Int(key string, value int) Field {
	return Field{Key: key, Value: value}
}

func Float64(key string, value float64) Field {
	return Field{Key: key, Value: value}
}

func Bool(key string, value bool) Field {
	return Field{Key: key, Value: value}
}

func Duration(key string, value time.Duration) Field {
	return Field{Key: key, Value: value.String()}
}

func Error(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: nil}
	}
	return Field{Key: "error", Value: err.Error()}
}

func Any(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// Field helpers for names that recur across the debloating run
func Component(name string) Field {
	return String("component", name)
}

func Group(name string) Field {
	return String("group", name)
}

func Stage(name string) Field {
	return String("stage", name)
}

func Outcome(name string) Field {
	return String("outcome", name)
}

func Symbol(name string) Field {
	return String("symbol", name)
}

func Iteration(n int) Field {
	return Int("iteration", n)
}

func Count(key string, n int) Field {
	return Int(key, n)
}
