package benchmark

import (
	"fmt"
	"runtime"
	"testing"
	"time"

	"github.com/yndnr/reqguard/internal/core/service"
	"github.com/yndnr/reqguard/pkg/windowtoken"
)

const benchSecret = "benchmark-shared-secret"

// benchNow is the fixed instant every benchmark validates at.
var benchNow = time.Unix(1_700_000_000, 0)

// Digests lists every supported token digest.
var Digests = []windowtoken.Digest{
	windowtoken.DigestMD5,
	windowtoken.DigestSHA256,
	windowtoken.DigestBLAKE2b,
}

// ClientCounts defines the distinct client counts for limiter benchmarks.
var ClientCounts = []int{100, 1000, 10000}

func newTokenValidator(b *testing.B, d windowtoken.Digest) *service.TokenValidator {
	b.Helper()
	v, err := service.NewTokenValidator(service.TokenValidatorConfig{
		SharedSecret: benchSecret,
		Digest:       d,
	})
	if err != nil {
		b.Fatalf("NewTokenValidator failed: %v", err)
	}
	return v
}

func newRequestValidator(b *testing.B) *service.RequestValidator {
	b.Helper()
	return service.NewRequestValidator(newTokenValidator(b, windowtoken.DefaultDigest), service.FixedClock(benchNow))
}

func validToken() string {
	return windowtoken.Generate(windowtoken.DefaultDigest, benchSecret, benchNow.Unix())
}

// reportMemory reports memory usage.
func reportMemory(b *testing.B, prefix string) {
	var m runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&m)
	b.ReportMetric(float64(m.Alloc)/(1024*1024), prefix+"_MB")
	b.ReportMetric(float64(m.NumGC), prefix+"_GC")
}

// runWithDigests runs a benchmark function once per digest.
func runWithDigests(b *testing.B, benchFn func(b *testing.B, d windowtoken.Digest)) {
	for _, d := range Digests {
		b.Run(fmt.Sprintf("digest_%s", d), func(b *testing.B) {
			benchFn(b, d)
		})
	}
}
