package redis

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// fakeClient is an in-memory RedisClient. Expiration is recorded, not enforced.
type fakeClient struct {
	mu     sync.Mutex
	data   map[string]string
	ttls   map[string]time.Duration
	getErr error
	setErr error
	sets   int
	// setNXErrs fail the next SetNX calls in order.
	setNXErrs []error
}

func newFakeClient() *fakeClient {
	return &fakeClient{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

var _ RedisClient = (*fakeClient)(nil)

func (f *fakeClient) Ping(context.Context) error { return nil }

func (f *fakeClient) Set(_ context.Context, key string, value interface{}, exp time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setErr != nil {
		return f.setErr
	}
	f.sets++
	f.data[key] = toString(value)
	f.ttls[key] = exp
	return nil
}

func (f *fakeClient) SetNX(_ context.Context, key string, value interface{}, exp time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.setNXErrs) > 0 {
		err := f.setNXErrs[0]
		f.setNXErrs = f.setNXErrs[1:]
		if err != nil {
			return false, err
		}
	}
	if _, ok := f.data[key]; ok {
		return false, nil
	}
	f.data[key] = toString(value)
	f.ttls[key] = exp
	return true, nil
}

func (f *fakeClient) Get(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return "", f.getErr
	}
	v, ok := f.data[key]
	if !ok {
		return "", Nil
	}
	return v, nil
}

func (f *fakeClient) Incr(_ context.Context, key string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	fmt.Sscan(f.data[key], &n)
	n++
	f.data[key] = fmt.Sprint(n)
	return n, nil
}

func (f *fakeClient) Expire(_ context.Context, key string, exp time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ttls[key] = exp
	return nil
}

func (f *fakeClient) Del(_ context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, k := range keys {
		delete(f.data, k)
	}
	return nil
}

// Eval understands only the unlock script.
func (f *fakeClient) Eval(_ context.Context, script string, keys []string, args ...interface{}) (interface{}, error) {
	if script != luaUnlock || len(keys) != 1 || len(args) != 1 {
		return nil, errors.New("unsupported script")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.data[keys[0]] == toString(args[0]) {
		delete(f.data, keys[0])
		return int64(1), nil
	}
	return int64(0), nil
}

func (f *fakeClient) Close() error { return nil }

func (f *fakeClient) has(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.data[key]
	return ok
}

func toString(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case []byte:
		return string(t)
	default:
		return fmt.Sprint(t)
	}
}
