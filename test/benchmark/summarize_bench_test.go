package benchmark

import (
	"fmt"
	"strings"
	"testing"

	"github.com/hyperjump/seshat/internal/corpus"
	"github.com/hyperjump/seshat/internal/models"
	"github.com/hyperjump/seshat/internal/similarity"
	"github.com/hyperjump/seshat/internal/summarizer"
)

var subjects = []string{"cats", "dogs", "rivers", "mountains", "planets", "engines", "forests", "oceans"}

// buildText returns n sentences cycling through a few subjects.
func buildText(n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		s := subjects[i%len(subjects)]
		fmt.Fprintf(&b, "The %s in chapter %d are described with care and detail. ", s, i)
	}
	return strings.TrimSpace(b.String())
}

func buildArticle(sections, items int) *models.Article {
	a := &models.Article{Title: "Benchmark", Content: models.Content{Summary: buildText(10)}}
	for i := 0; i < sections; i++ {
		sec := models.Section{Title: fmt.Sprintf("What %s eat", subjects[i%len(subjects)]), Content: buildText(5)}
		for j := 0; j < items; j++ {
			sec.Items = append(sec.Items, models.Item{Title: fmt.Sprintf("Diet %d", j), Content: buildText(3)})
		}
		a.Content.Sections = append(a.Content.Sections, sec)
	}
	return a
}

func BenchmarkSimilarity(b *testing.B) {
	x := "The domestic cat is a small carnivorous mammal."
	y := "What do domestic cats eat when they hunt?"
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = similarity.Similarity(x, y)
	}
}

func BenchmarkNormalize(b *testing.B) {
	text := buildText(20)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = similarity.Normalize(text)
	}
}

func BenchmarkEditSimilarity(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_ = similarity.EditSimilarity("What cats eat", "What do cats eat?")
	}
}

func BenchmarkSummarize(b *testing.B) {
	for _, n := range []int{10, 100, 500} {
		text := buildText(n)
		b.Run(fmt.Sprintf("sentences=%d", n), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				_, _ = summarizer.Summarize(text, 5)
			}
		})
	}
}

func BenchmarkSummarizeWithQuestion(b *testing.B) {
	text := buildText(200)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = summarizer.SummarizeWithQuestion("What do cats eat?", text, 5)
	}
}

func BenchmarkAssembleDeep(b *testing.B) {
	a := buildArticle(40, 5)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = corpus.Assemble(a, "What do cats eat?", true, 0.5)
	}
}
