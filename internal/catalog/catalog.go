package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"time"

	"ecoroot/internal/model"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultDocument []byte

const dateLayout = "2006-01-02"

var (
	ErrInvalidChallenge = errors.New("invalid challenge definition")
	ErrDuplicateID      = errors.New("duplicate id")
)

type document struct {
	Challenges []challengeEntry `yaml:"challenges"`
	Rewards    []rewardEntry    `yaml:"rewards"`
}

type challengeEntry struct {
	ID           string         `yaml:"id"`
	Title        string         `yaml:"title"`
	Description  string         `yaml:"description"`
	Category     string         `yaml:"category"`
	Difficulty   string         `yaml:"difficulty"`
	Points       int            `yaml:"points"`
	DurationDays int            `yaml:"durationDays"`
	ProofType    string         `yaml:"proofType"`
	Festival     *festivalEntry `yaml:"festival"`
	Teacher      *teacherEntry  `yaml:"teacher"`
}

type festivalEntry struct {
	Name      string `yaml:"name"`
	StartDate string `yaml:"startDate"`
	EndDate   string `yaml:"endDate"`
}

type teacherEntry struct {
	TargetAudience string `yaml:"targetAudience"`
	MaxStudents    int    `yaml:"maxStudents"`
}

type rewardEntry struct {
	ID          string `yaml:"id"`
	Title       string `yaml:"title"`
	NGO         string `yaml:"ngo"`
	Description string `yaml:"description"`
	Cost        int    `yaml:"cost"`
}

// Catalog is the immutable set of challenge and reward definitions.
type Catalog struct {
	challenges []model.Challenge
	byID       map[string]model.Challenge
	rewards    []model.Reward
	rewardByID map[string]model.Reward
}

// Default returns the catalog compiled into the binary.
func Default() (*Catalog, error) {
	return Load(defaultDocument)
}

func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	return Load(data)
}

func Load(data []byte) (*Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	c := &Catalog{
		challenges: make([]model.Challenge, 0, len(doc.Challenges)),
		byID:       make(map[string]model.Challenge, len(doc.Challenges)),
		rewards:    make([]model.Reward, 0, len(doc.Rewards)),
		rewardByID: make(map[string]model.Reward, len(doc.Rewards)),
	}

	for _, entry := range doc.Challenges {
		ch, err := entry.toModel()
		if err != nil {
			return nil, err
		}
		if _, exists := c.byID[ch.ID]; exists {
			return nil, fmt.Errorf("challenge %q: %w", ch.ID, ErrDuplicateID)
		}
		c.challenges = append(c.challenges, ch)
		c.byID[ch.ID] = ch
	}

	for _, entry := range doc.Rewards {
		if entry.ID == "" || entry.Cost < 0 {
			return nil, fmt.Errorf("reward %q: invalid definition", entry.ID)
		}
		if _, exists := c.rewardByID[entry.ID]; exists {
			return nil, fmt.Errorf("reward %q: %w", entry.ID, ErrDuplicateID)
		}
		r := model.Reward{
			ID:          entry.ID,
			Title:       entry.Title,
			NGO:         entry.NGO,
			Description: entry.Description,
			Cost:        entry.Cost,
		}
		c.rewards = append(c.rewards, r)
		c.rewardByID[r.ID] = r
	}

	return c, nil
}

func (e challengeEntry) toModel() (model.Challenge, error) {
	invalid := func(reason string) error {
		return fmt.Errorf("challenge %q: %s: %w", e.ID, reason, ErrInvalidChallenge)
	}

	if e.ID == "" {
		return model.Challenge{}, invalid("missing id")
	}
	if e.DurationDays < 1 {
		return model.Challenge{}, invalid("durationDays must be at least 1")
	}
	if e.Points < 0 {
		return model.Challenge{}, invalid("points must not be negative")
	}

	difficulty := model.Difficulty(e.Difficulty)
	switch difficulty {
	case model.DifficultyEasy, model.DifficultyMedium, model.DifficultyHard:
	default:
		return model.Challenge{}, invalid("unknown difficulty " + e.Difficulty)
	}

	proofType := model.ProofType(e.ProofType)
	switch proofType {
	case model.ProofCamera, model.ProofUpload:
	default:
		return model.Challenge{}, invalid("unknown proofType " + e.ProofType)
	}

	ch := model.Challenge{
		ID:           e.ID,
		Title:        e.Title,
		Description:  e.Description,
		Category:     e.Category,
		Difficulty:   difficulty,
		Points:       e.Points,
		DurationDays: e.DurationDays,
		ProofType:    proofType,
		Kind:         model.KindRegular,
	}

	if e.Festival != nil && e.Teacher != nil {
		return model.Challenge{}, invalid("a challenge cannot be both festival and teacher-led")
	}

	if e.Festival != nil {
		start, err := time.Parse(dateLayout, e.Festival.StartDate)
		if err != nil {
			return model.Challenge{}, invalid("bad festival startDate")
		}
		end, err := time.Parse(dateLayout, e.Festival.EndDate)
		if err != nil {
			return model.Challenge{}, invalid("bad festival endDate")
		}
		if end.Before(start) {
			return model.Challenge{}, invalid("festival ends before it starts")
		}
		ch.Kind = model.KindFestival
		ch.Festival = &model.FestivalWindow{Name: e.Festival.Name, StartDate: start, EndDate: end}
	}

	if e.Teacher != nil {
		ch.Kind = model.KindTeacher
		ch.Teacher = &model.TeacherLed{
			TargetAudience: e.Teacher.TargetAudience,
			MaxStudents:    e.Teacher.MaxStudents,
		}
	}

	return ch, nil
}

func (c *Catalog) Challenge(id string) (model.Challenge, bool) {
	ch, ok := c.byID[id]
	return ch, ok
}

// Challenges returns every definition in document order.
func (c *Catalog) Challenges() []model.Challenge {
	return append([]model.Challenge(nil), c.challenges...)
}

func (c *Catalog) Reward(id string) (model.Reward, bool) {
	r, ok := c.rewardByID[id]
	return r, ok
}

func (c *Catalog) Rewards() []model.Reward {
	return append([]model.Reward(nil), c.rewards...)
}
