package idgen_test

import (
	"regexp"
	"strings"
	"sync"
	"testing"

	"github.com/artpar/apiquery/adapters/idgen"
	"github.com/stretchr/testify/assert"
)

var uuidV4 = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-4[0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`)

func TestRequestID_New(t *testing.T) {
	id := idgen.RequestID{}.New()
	assert.Regexp(t, uuidV4, id)

	prefixed := idgen.RequestID{Prefix: "cli-"}.New()
	assert.True(t, strings.HasPrefix(prefixed, "cli-"))
	assert.Regexp(t, uuidV4, strings.TrimPrefix(prefixed, "cli-"))
}

func TestRequestID_Unique(t *testing.T) {
	g := idgen.RequestID{}
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := g.New()
		assert.False(t, seen[id], "duplicate ID %s", id)
		seen[id] = true
	}
}

func TestSequential(t *testing.T) {
	g := idgen.NewSequential("req_")
	assert.Equal(t, "req_1", g.New())
	assert.Equal(t, "req_2", g.New())
	assert.Equal(t, "req_3", g.New())
}

func TestSequential_Concurrent(t *testing.T) {
	g := idgen.NewSequential("")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			g.New()
		}()
	}
	wg.Wait()

	assert.Equal(t, "51", g.New())
}
