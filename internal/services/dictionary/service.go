package dictionary

import (
	"bufio"
	_ "embed"
	"io"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/mcoot/wordparty/internal/dependencies/random"
	"github.com/mcoot/wordparty/internal/model"
)

//go:embed data/answers.txt
var embeddedAnswers string

//go:embed data/allowed.txt
var embeddedAllowed string

// Service holds the answer list and the set of accepted guesses.
// Every answer is also an accepted guess.
type Service struct {
	mu      sync.RWMutex
	answers []string
	allowed map[string]struct{}
	loaded  bool
}

// New creates an empty DictionaryService
func New() *Service {
	return &Service{
		allowed: make(map[string]struct{}),
	}
}

// LoadDefaults loads the embedded word lists
func (s *Service) LoadDefaults() error {
	answers, err := readWords(strings.NewReader(embeddedAnswers))
	if err != nil {
		return err
	}
	allowed, err := readWords(strings.NewReader(embeddedAllowed))
	if err != nil {
		return err
	}
	return s.LoadWords(answers, allowed)
}

// LoadFromFile loads answers from a file (one word per line). When
// allowedPath is empty the answers are the only accepted guesses.
func (s *Service) LoadFromFile(answersPath, allowedPath string) error {
	answers, err := readFile(answersPath)
	if err != nil {
		return err
	}
	var allowed []string
	if allowedPath != "" {
		allowed, err = readFile(allowedPath)
		if err != nil {
			return err
		}
	}
	return s.LoadWords(answers, allowed)
}

// LoadWords directly loads word lists (useful for testing).
// Words not made of exactly five letters are skipped.
func (s *Service) LoadWords(answers, allowed []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.answers = s.answers[:0]
	s.allowed = make(map[string]struct{}, len(answers)+len(allowed))
	seen := make(map[string]struct{}, len(answers))
	for _, w := range answers {
		w = model.NormalizeWord(w)
		if !model.IsWordShape(w) {
			continue
		}
		if _, dup := seen[w]; !dup {
			seen[w] = struct{}{}
			s.answers = append(s.answers, w)
		}
		s.allowed[w] = struct{}{}
	}
	for _, w := range allowed {
		w = model.NormalizeWord(w)
		if model.IsWordShape(w) {
			s.allowed[w] = struct{}{}
		}
	}
	sort.Strings(s.answers)
	s.loaded = true
	return nil
}

// IsValidWord checks if a word is an accepted guess
func (s *Service) IsValidWord(word string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.loaded {
		return false
	}

	_, ok := s.allowed[model.NormalizeWord(word)]
	return ok
}

// IsAnswer checks if a word can be chosen as a target
func (s *Service) IsAnswer(word string) bool {
	w := model.NormalizeWord(word)
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := sort.SearchStrings(s.answers, w)
	return i < len(s.answers) && s.answers[i] == w
}

// RandomAnswer picks a target word
func (s *Service) RandomAnswer(r random.Random) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.loaded || len(s.answers) == 0 {
		return "", ErrDictionaryNotLoaded
	}
	return s.answers[r.Intn(len(s.answers))], nil
}

// Answers returns a copy of the answer list, sorted
func (s *Service) Answers() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.answers...)
}

// IsLoaded returns whether the dictionary has been loaded
func (s *Service) IsLoaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// WordCount returns the number of accepted guesses
func (s *Service) WordCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.allowed)
}

func readFile(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return readWords(file)
}

func readWords(r io.Reader) ([]string, error) {
	var words []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		word := strings.TrimSpace(scanner.Text())
		if word != "" && !strings.HasPrefix(word, "#") {
			words = append(words, word)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return words, nil
}

// Interface check
type ServiceInterface interface {
	IsValidWord(word string) bool
	IsAnswer(word string) bool
	RandomAnswer(r random.Random) (string, error)
	IsLoaded() bool
	WordCount() int
}

var _ ServiceInterface = (*Service)(nil)

// ErrDictionaryNotLoaded is returned when operations are attempted before loading
var ErrDictionaryNotLoaded = model.ErrDictionaryNotLoaded
