package usecase

import (
	"reflect"
	"testing"
)

func TestExtractKeywordsFiltersStopWordsAndShortTokens(t *testing.T) {
	got := extractKeywords("What is the Capital of France?")
	want := []string{"what", "capital", "france"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("extractKeywords() = %v, want %v", got, want)
	}
}

func TestExtractKeywordsEmptyWhenNothingSurvives(t *testing.T) {
	if got := extractKeywords("to be or in at"); len(got) != 0 {
		t.Fatalf("expected no keywords, got %v", got)
	}
}

func TestExtractKeywordsKeepsFirstThreeInOrder(t *testing.T) {
	got := extractKeywords("compare revenue growth margin churn")
	want := []string{"compare", "revenue", "growth"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("extractKeywords() = %v, want %v", got, want)
	}
}

func TestExtractKeywordsStripsPunctuation(t *testing.T) {
	got := extractKeywords("什么?! sales-report (2024)")
	want := []string{"sales", "report", "2024"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("extractKeywords() = %v, want %v", got, want)
	}
}
