// Package catalog expone el catalogo estatico de preguntas de la entrevista.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"memory-assistant/internal/domain"
)

//go:embed questions.yaml
var defaultQuestions []byte

var (
	ErrDuplicateQuestion = errors.New("duplicate question id")
	ErrInvalidQuestion   = errors.New("invalid question")
	ErrNoQuestions       = errors.New("no questions available")
)

// Catalog es una tabla inmutable de preguntas ordenadas por Order.
// Solo las preguntas activas son visibles para las consultas.
type Catalog struct {
	active []domain.Question
	byID   map[string]int
	intn   func(n int) int
}

type Option func(*Catalog)

// WithRandom reemplaza la fuente de aleatoriedad usada por PickRandom.
func WithRandom(intn func(n int) int) Option {
	return func(c *Catalog) {
		if intn != nil {
			c.intn = intn
		}
	}
}

// New construye un catalogo a partir de preguntas. Falla si hay ids repetidos.
func New(questions []domain.Question, opts ...Option) (*Catalog, error) {
	seen := make(map[string]struct{}, len(questions))
	active := make([]domain.Question, 0, len(questions))
	for i, q := range questions {
		q.ID = strings.TrimSpace(q.ID)
		q.Category = strings.TrimSpace(q.Category)
		if q.ID == "" || q.Category == "" || strings.TrimSpace(q.Prompt) == "" {
			return nil, fmt.Errorf("%w: entry %d", ErrInvalidQuestion, i)
		}
		if _, ok := seen[q.ID]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateQuestion, q.ID)
		}
		seen[q.ID] = struct{}{}
		if q.IsActive {
			active = append(active, q)
		}
	}
	sort.SliceStable(active, func(i, j int) bool {
		return active[i].Order < active[j].Order
	})

	c := &Catalog{
		active: active,
		byID:   make(map[string]int, len(active)),
		intn:   rand.Intn,
	}
	for i, q := range active {
		c.byID[q.ID] = i
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Parse decodifica un catalogo en YAML.
func Parse(data []byte, opts ...Option) (*Catalog, error) {
	var questions []domain.Question
	if err := yaml.Unmarshal(data, &questions); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	return New(questions, opts...)
}

// Default devuelve el catalogo embebido en el binario.
func Default(opts ...Option) (*Catalog, error) {
	return Parse(defaultQuestions, opts...)
}

// Load usa el archivo indicado o el catalogo embebido si path esta vacio.
func Load(path string, opts ...Option) (*Catalog, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return Default(opts...)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(data, opts...)
}

func (c *Catalog) ListAll() []domain.Question {
	out := make([]domain.Question, len(c.active))
	copy(out, c.active)
	return out
}

// ListByCategory filtra por coincidencia exacta de categoria.
func (c *Catalog) ListByCategory(category string) []domain.Question {
	out := []domain.Question{}
	for _, q := range c.active {
		if q.Category == category {
			out = append(out, q)
		}
	}
	return out
}

func (c *Catalog) pool(category string) []domain.Question {
	category = strings.TrimSpace(category)
	if category == "" {
		return c.active
	}
	return c.ListByCategory(category)
}

func (c *Catalog) Get(id string) (domain.Question, bool) {
	idx, ok := c.byID[strings.TrimSpace(id)]
	if !ok {
		return domain.Question{}, false
	}
	return c.active[idx], true
}

func (c *Catalog) PickRandom(category string) (domain.Question, error) {
	pool := c.pool(category)
	if len(pool) == 0 {
		return domain.Question{}, ErrNoQuestions
	}
	return pool[c.intn(len(pool))], nil
}

// NextAfter devuelve la pregunta que sigue a questionID dentro del pool.
// Devuelve false si questionID no esta en el pool o es la ultima.
func (c *Catalog) NextAfter(questionID, category string) (domain.Question, bool) {
	pool := c.pool(category)
	questionID = strings.TrimSpace(questionID)
	for i, q := range pool {
		if q.ID != questionID {
			continue
		}
		if i == len(pool)-1 {
			return domain.Question{}, false
		}
		return pool[i+1], true
	}
	return domain.Question{}, false
}

func (c *Catalog) HasCategory(category string) bool {
	for _, q := range c.active {
		if q.Category == category {
			return true
		}
	}
	return false
}

// Categories lista las categorias en orden de aparicion con su cantidad de preguntas.
func (c *Catalog) Categories() []domain.CategoryCount {
	index := make(map[string]int)
	out := []domain.CategoryCount{}
	for _, q := range c.active {
		i, ok := index[q.Category]
		if !ok {
			index[q.Category] = len(out)
			out = append(out, domain.CategoryCount{Name: q.Category, Label: CategoryLabel(q.Category)})
			i = len(out) - 1
		}
		out[i].Count++
	}
	return out
}

// CategoryLabel convierte "early-life" en "Early Life".
func CategoryLabel(category string) string {
	words := strings.Split(category, "-")
	caser := cases.Title(language.Und)
	for i, w := range words {
		words[i] = caser.String(w)
	}
	return strings.Join(words, " ")
}
