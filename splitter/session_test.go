package splitter

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/creachadair/ffs/combo"
)

func sessionKeywordOracle(keywords ...string) func(context.Context, []string) (bool, error) {
	return func(_ context.Context, components []string) (bool, error) {
		for _, kw := range keywords {
			found := false
			for _, c := range components {
				if strings.Contains(c, kw) {
					found = true
					break
				}
			}
			if !found {
				return false, nil
			}
		}
		return true, nil
	}
}

func TestSession_manualDrive(t *testing.T) {
	const article = "xxxAAAxxxBBBxxx"
	oracle := sessionKeywordOracle("AAA", "BBB")
	s := NewSession(article)

	var result combo.Sequence
	for {
		components, done, res := s.NextProbe()
		if done {
			result = res
			break
		}
		blocked, err := oracle(context.Background(), components)
		if err != nil {
			t.Fatalf("oracle: %v", err)
		}
		s.Feed(blocked)
	}
	want := combo.Sequence{"AAA", "BBB"}.Set()
	if got := result.Set(); !got.Equals(want) {
		t.Errorf("NextProbe/Feed result: got %v, want %v", result, want)
	}
}

func TestRunSync(t *testing.T) {
	const article = "xxxAAAxxxBBBxxx"
	s := NewSession(article)
	seq, err := RunSync(context.Background(), s, sessionKeywordOracle("AAA", "BBB"))
	if err != nil {
		t.Fatalf("RunSync: %v", err)
	}
	want := combo.Sequence{"AAA", "BBB"}.Set()
	if !seq.Set().Equals(want) {
		t.Errorf("RunSync: got %v, want %v", seq, want)
	}
}

func TestRunAsync(t *testing.T) {
	const article = "xxxAAAxxxBBBxxx"
	s := NewSession(article)
	seq, err := RunAsync(context.Background(), s, sessionKeywordOracle("AAA", "BBB"))
	if err != nil {
		t.Fatalf("RunAsync: %v", err)
	}
	want := combo.Sequence{"AAA", "BBB"}.Set()
	if !seq.Set().Equals(want) {
		t.Errorf("RunAsync: got %v, want %v", seq, want)
	}
}

func TestRunSync_oracleError(t *testing.T) {
	wantErr := errors.New("oracle unavailable")
	s := NewSession("xxxAAAxxxBBBxxx")
	_, err := RunSync(context.Background(), s, func(context.Context, []string) (bool, error) {
		return false, wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Errorf("RunSync: got err %v, want %v", err, wantErr)
	}
}
