package intern

import (
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPoolIntern(t *testing.T) {
	p := NewPool()

	a := p.Intern("gateway")
	b := p.Intern("gateway")
	assert.Equal(t, a, b)

	stats := p.GetStats()
	assert.Equal(t, int64(2), stats.Lookups)
	assert.Equal(t, int64(1), stats.Distinct)
}

func TestPoolEmptyString(t *testing.T) {
	p := NewPool()

	assert.Equal(t, "", p.Intern(""))
	assert.Equal(t, int64(0), p.GetStats().Lookups)
}

func TestPoolInternFields(t *testing.T) {
	p := NewPool()

	fields := map[string]string{"source": "gateway", "event": "SEND"}
	p.InternFields(fields)

	assert.Equal(t, "gateway", fields["source"])
	assert.Equal(t, int64(2), p.GetStats().Distinct)
}

func TestPoolReset(t *testing.T) {
	p := NewPool()
	p.Intern("a")
	p.Intern("b")

	p.Reset()
	stats := p.GetStats()
	assert.Equal(t, int64(0), stats.Lookups)
	assert.Equal(t, int64(0), stats.Distinct)
}

func TestPoolConcurrent(t *testing.T) {
	p := NewPool()

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				p.Intern("value-" + strconv.Itoa(i%10))
			}
		}()
	}
	wg.Wait()

	stats := p.GetStats()
	assert.Equal(t, int64(800), stats.Lookups)
	assert.Equal(t, int64(10), stats.Distinct)
}
