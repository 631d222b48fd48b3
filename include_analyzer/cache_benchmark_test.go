package include_analyzer

import (
	"crypto/md5"
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/zeebo/xxh3"
)

func randomShaderSources(n int) []string {
	sources := make([]string, n)
	for i := range sources {
		var builder strings.Builder
		builder.WriteString("#version 450\n// generated\n")
		for j := 0; j < rand.Intn(20)+5; j++ {
			fmt.Fprintf(&builder, "#include \"lib/module_%d.h\"\n", rand.Intn(100))
		}
		builder.WriteString("/* body */\nvoid main() {}\n")
		sources[i] = builder.String()
	}
	return sources
}

// BenchmarkCacheKeyGeneration compares content hashing strategies
func BenchmarkCacheKeyGeneration(b *testing.B) {
	sources := randomShaderSources(1000)

	b.Run("MD5", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			hash := md5.Sum([]byte(sources[i%1000]))
			_ = hash
		}
	})

	b.Run("XXH3", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_ = xxh3.HashString(sources[i%1000])
		}
	})
}

// BenchmarkExtraction measures cached against uncached extraction
func BenchmarkExtraction(b *testing.B) {
	sources := randomShaderSources(100)

	b.Run("Uncached", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_ = ExtractDirectives(sources[i%100])
		}
	})

	b.Run("Cached", func(b *testing.B) {
		cache, err := NewExtractionCache(DefaultCacheSize)
		if err != nil {
			b.Fatal(err)
		}
		for i := 0; i < b.N; i++ {
			_ = cache.Extract(sources[i%100])
		}
	})
}

// BenchmarkExtractCommentHeavyHeader measures comment stripping on a large header
func BenchmarkExtractCommentHeavyHeader(b *testing.B) {
	content := commentHeavyHeader(20000)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = ExtractDirectives(content)
	}
}
