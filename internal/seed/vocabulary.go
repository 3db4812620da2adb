// Package seed loads the curated tag vocabulary and populates development
// databases with demo users, recipes and recipe books.
package seed

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"recipebox/internal/service"

	"gopkg.in/yaml.v3"
)

//go:embed tags.yaml
var tagsYAML []byte

type vocabularyFile struct {
	Categories []struct {
		Name string   `yaml:"name"`
		Tags []string `yaml:"tags"`
	} `yaml:"categories"`
}

var (
	vocabOnce sync.Once
	vocab     []service.TagCategory
	vocabErr  error
)

// Vocabulary returns the embedded tag categories. The file is parsed once.
func Vocabulary() ([]service.TagCategory, error) {
	vocabOnce.Do(func() {
		vocab, vocabErr = ParseVocabulary(tagsYAML)
	})
	return vocab, vocabErr
}

// ParseVocabulary decodes a vocabulary document. Category names must be
// unique and a tag name may appear in only one category, ignoring case.
func ParseVocabulary(data []byte) ([]service.TagCategory, error) {
	var file vocabularyFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode tag vocabulary: %w", err)
	}

	categories := make([]service.TagCategory, 0, len(file.Categories))
	seenCategory := make(map[string]bool)
	seenTag := make(map[string]string)
	for _, c := range file.Categories {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return nil, fmt.Errorf("tag vocabulary: category without a name")
		}
		if seenCategory[strings.ToLower(name)] {
			return nil, fmt.Errorf("tag vocabulary: duplicate category %q", name)
		}
		seenCategory[strings.ToLower(name)] = true

		tags := make([]string, 0, len(c.Tags))
		for _, t := range c.Tags {
			t = strings.TrimSpace(t)
			if t == "" {
				continue
			}
			if owner, ok := seenTag[strings.ToLower(t)]; ok {
				return nil, fmt.Errorf("tag vocabulary: %q listed in both %q and %q", t, owner, name)
			}
			seenTag[strings.ToLower(t)] = name
			tags = append(tags, t)
		}
		categories = append(categories, service.TagCategory{Name: name, Tags: tags})
	}
	return categories, nil
}

// TagNames flattens categories into one list in declaration order.
func TagNames(categories []service.TagCategory) []string {
	var names []string
	for _, c := range categories {
		names = append(names, c.Tags...)
	}
	return names
}
