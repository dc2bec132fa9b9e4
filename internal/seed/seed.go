// Package seed fills the database with demo content for development and
// manual testing. Nothing here runs in production.
package seed

import (
	"context"
	"fmt"
	"os"

	"askmate/internal/models"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

// DemoPassword is the password of every generated account.
const DemoPassword = "askmate-demo-pass"

// Options controls how much content a seeding run creates.
type Options struct {
	Users       int  `yaml:"users"`
	Questions   int  `yaml:"questions"`
	MaxAnswers  int  `yaml:"max_answers"`
	MaxComments int  `yaml:"max_comments"`
	MaxTags     int  `yaml:"max_tags"`
	MaxDays     int  `yaml:"max_days"`
	WithAdmin   bool `yaml:"with_admin"`
	// SkipBcrypt stores DemoPassword unhashed. Tests only; such users cannot log in.
	SkipBcrypt bool  `yaml:"skip_bcrypt"`
	RandSeed   int64 `yaml:"rand_seed"`
}

// DefaultOptions is used when no preset is chosen.
var DefaultOptions = Options{
	Users:       10,
	Questions:   30,
	MaxAnswers:  4,
	MaxComments: 2,
	MaxTags:     3,
	MaxDays:     90,
	WithAdmin:   true,
}

// PresetFile is the on-disk layout of a presets YAML file.
type PresetFile struct {
	Presets map[string]Options `yaml:"presets"`
}

// ParsePresets decodes a presets document.
func ParsePresets(data []byte) (map[string]Options, error) {
	var file PresetFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse presets: %w", err)
	}
	if len(file.Presets) == 0 {
		return nil, fmt.Errorf("parse presets: no presets defined")
	}
	for name, opts := range file.Presets {
		if opts.Users < 1 {
			return nil, fmt.Errorf("preset %q: users must be at least 1", name)
		}
		if opts.Questions < 0 || opts.MaxAnswers < 0 || opts.MaxComments < 0 || opts.MaxTags < 0 {
			return nil, fmt.Errorf("preset %q: counts must not be negative", name)
		}
	}
	return file.Presets, nil
}

// LoadPreset reads path and returns the named preset.
func LoadPreset(path, name string) (Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Options{}, fmt.Errorf("read presets: %w", err)
	}
	presets, err := ParsePresets(data)
	if err != nil {
		return Options{}, err
	}
	opts, ok := presets[name]
	if !ok {
		return Options{}, fmt.Errorf("preset %q not found in %s", name, path)
	}
	return opts, nil
}

// Result counts what a run created.
type Result struct {
	Users            int
	Questions        int
	Answers          int
	QuestionComments int
	AnswerComments   int
	Tags             int
}

func (r Result) String() string {
	return fmt.Sprintf("%d users, %d questions, %d answers, %d question comments, %d answer comments, %d tags",
		r.Users, r.Questions, r.Answers, r.QuestionComments, r.AnswerComments, r.Tags)
}

// Seeder runs a full seeding pass.
type Seeder struct {
	db      *gorm.DB
	opts    Options
	factory *Factory
}

// NewSeeder creates a Seeder bound to db.
func NewSeeder(db *gorm.DB, opts Options) *Seeder {
	return &Seeder{db: db, opts: opts, factory: NewFactory(db, opts)}
}

// ClearAll deletes every forum row, children first. Roles are kept.
func (s *Seeder) ClearAll(ctx context.Context) error {
	tables := []any{
		&models.QuestionTag{},
		&models.AnswerComment{},
		&models.QuestionComment{},
		&models.Answer{},
		&models.Question{},
		&models.Tag{},
		&models.UserClaim{},
		&models.UserRole{},
		&models.User{},
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range tables {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
				return fmt.Errorf("clear %T: %w", model, err)
			}
		}
		return nil
	})
}

// Run seeds built-ins, users and a random thread tree under each question.
func (s *Seeder) Run(ctx context.Context) (Result, error) {
	var res Result
	f := s.factory.WithContext(ctx)

	tags, err := Builtins(s.db.WithContext(ctx))
	if err != nil {
		return res, fmt.Errorf("built-ins: %w", err)
	}
	res.Tags = len(tags)

	users := make([]*models.User, 0, s.opts.Users+1)
	for i := 0; i < s.opts.Users; i++ {
		u, err := f.CreateUser(i)
		if err != nil {
			return res, fmt.Errorf("create user: %w", err)
		}
		users = append(users, u)
	}
	if s.opts.WithAdmin {
		admin, err := f.CreateAdmin()
		if err != nil {
			return res, fmt.Errorf("create admin: %w", err)
		}
		users = append(users, admin)
	}
	res.Users = len(users)
	if len(users) == 0 {
		return res, nil
	}

	for i := 0; i < s.opts.Questions; i++ {
		author := f.pickUser(users)
		q, err := f.CreateQuestion(author, f.pickTags(tags, s.opts.MaxTags))
		if err != nil {
			return res, fmt.Errorf("create question: %w", err)
		}
		res.Questions++

		for j := f.upTo(s.opts.MaxComments); j > 0; j-- {
			if _, err := f.CreateQuestionComment(f.pickUser(users), q); err != nil {
				return res, fmt.Errorf("create question comment: %w", err)
			}
			res.QuestionComments++
		}

		for j := f.upTo(s.opts.MaxAnswers); j > 0; j-- {
			a, err := f.CreateAnswer(f.pickUser(users), q)
			if err != nil {
				return res, fmt.Errorf("create answer: %w", err)
			}
			res.Answers++

			for k := f.upTo(s.opts.MaxComments); k > 0; k-- {
				if _, err := f.CreateAnswerComment(f.pickUser(users), a); err != nil {
					return res, fmt.Errorf("create answer comment: %w", err)
				}
				res.AnswerComments++
			}
		}
	}
	return res, nil
}
