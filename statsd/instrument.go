package statsd

import "fmt"

// Func is the shape of a call the wrappers below instrument.
type Func[T any] func() (T, error)

// CountCalls returns fn counting every call under name, including calls
// that fail or panic.
func CountCalls[T any](c ClientInterface, name string, fn Func[T], options ...MetricOption) Func[T] {
	return func() (T, error) {
		defer c.Increment(name, 1, options...)
		return fn()
	}
}

// CountSuccess returns fn counting its calls under name.success or
// name.failure. A call fails when it panics, returns an error, or when
// success, if not nil, returns false for its result.
func CountSuccess[T any](c ClientInterface, name string, fn Func[T], success func(T) bool, options ...MetricOption) Func[T] {
	return func() (result T, err error) {
		ok := false
		defer func() {
			suffix := ".failure"
			if ok {
				suffix = ".success"
			}
			c.Increment(name+suffix, 1, options...)
		}()
		result, err = fn()
		ok = err == nil && (success == nil || success(result))
		return result, err
	}
}

// CountIf returns fn counting under name only the calls that succeed: no
// panic, no error, and condition, if not nil, returns true.
func CountIf[T any](c ClientInterface, name string, fn Func[T], condition func(T) bool, options ...MetricOption) Func[T] {
	return func() (T, error) {
		result, err := fn()
		if err == nil && (condition == nil || condition(result)) {
			c.Increment(name, 1, options...)
		}
		return result, err
	}
}

// MeasureCalls returns fn recording the duration of each call as a timing.
func MeasureCalls[T any](c ClientInterface, name string, fn Func[T], options ...MetricOption) Func[T] {
	return func() (result T, err error) {
		err = c.MeasureFunc(name, func() error {
			var callErr error
			result, callErr = fn()
			return callErr
		}, options...)
		return result, err
	}
}

// DistributionCalls returns fn recording the duration of each call as a
// distribution.
func DistributionCalls[T any](c ClientInterface, name string, fn Func[T], options ...MetricOption) Func[T] {
	return func() (result T, err error) {
		err = c.DistributionFunc(name, func() error {
			var callErr error
			result, callErr = fn()
			return callErr
		}, options...)
		return result, err
	}
}

// MetricName joins the parts of a metric name with dots, formatting each
// with %v. It helps build names from a receiver type and a method name.
func MetricName(parts ...interface{}) string {
	name := make([]byte, 0, 64)
	for i, part := range parts {
		if i > 0 {
			name = append(name, '.')
		}
		name = fmt.Append(name, part)
	}
	return string(name)
}
