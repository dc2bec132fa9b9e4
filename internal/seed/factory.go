package seed

import (
	"context"
	"fmt"
	"strings"
	"time"

	"askmate/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Factory builds forum entities with fake content and persists them.
type Factory struct {
	db    *gorm.DB
	opts  Options
	faker *gofakeit.Faker
	hash  string
}

// NewFactory creates a Factory. A zero RandSeed gives a random run.
func NewFactory(db *gorm.DB, opts Options) *Factory {
	return &Factory{db: db, opts: opts, faker: gofakeit.New(opts.RandSeed)}
}

// WithContext returns a copy whose writes use ctx.
func (f *Factory) WithContext(ctx context.Context) *Factory {
	clone := *f
	clone.db = f.db.WithContext(ctx)
	return &clone
}

func (f *Factory) passwordHash() (string, error) {
	if f.opts.SkipBcrypt {
		return DemoPassword, nil
	}
	if f.hash == "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), bcrypt.DefaultCost)
		if err != nil {
			return "", err
		}
		f.hash = string(hashed)
	}
	return f.hash, nil
}

// pastTime spreads dates over the last MaxDays days.
func (f *Factory) pastTime() time.Time {
	maxDays := f.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 90
	}
	back := time.Duration(f.faker.Number(0, maxDays*24*60)) * time.Minute
	return time.Now().Add(-back)
}

func (f *Factory) upTo(n int) int {
	if n <= 0 {
		return 0
	}
	return f.faker.Number(0, n)
}

func (f *Factory) pickUser(users []*models.User) *models.User {
	return users[f.faker.Number(0, len(users)-1)]
}

func (f *Factory) pickTags(tags []models.Tag, limit int) []models.Tag {
	n := f.upTo(limit)
	if n > len(tags) {
		n = len(tags)
	}
	picked := make([]models.Tag, 0, n)
	for _, i := range f.faker.Rand.Perm(len(tags))[:n] {
		picked = append(picked, tags[i])
	}
	return picked
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return strings.TrimSpace(s[:max])
}

// CreateUser persists a user whose name is unique by construction.
func (f *Factory) CreateUser(n int, overrides ...func(*models.User)) (*models.User, error) {
	hash, err := f.passwordHash()
	if err != nil {
		return nil, err
	}
	name := fmt.Sprintf("%s%d", f.faker.Username(), n)
	user := &models.User{
		UserName:     name,
		Email:        strings.ToLower(name) + "@example.com",
		PasswordHash: hash,
		DateAdded:    f.pastTime(),
	}
	for _, override := range overrides {
		override(user)
	}
	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// CreateAdmin persists the "admin" account with the Admin role and the
// IsAdmin claim. Re-running returns the existing account.
func (f *Factory) CreateAdmin() (*models.User, error) {
	var admin models.User
	err := f.db.Where("user_name = ?", "admin").First(&admin).Error
	if err != nil {
		created, cerr := f.CreateUser(0, func(u *models.User) {
			u.UserName = "admin"
			u.Email = "admin@example.com"
		})
		if cerr != nil {
			return nil, cerr
		}
		admin = *created
	}

	var role models.Role
	if err := f.db.Where("name = ?", models.RoleAdmin).First(&role).Error; err != nil {
		return nil, err
	}
	if err := f.db.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.UserRole{UserID: admin.ID, RoleID: role.ID}).Error; err != nil {
		return nil, err
	}

	var claims int64
	if err := f.db.Model(&models.UserClaim{}).
		Where("user_id = ? AND claim_type = ?", admin.ID, models.ClaimIsAdmin).
		Count(&claims).Error; err != nil {
		return nil, err
	}
	if claims == 0 {
		claim := models.UserClaim{UserID: admin.ID, ClaimType: models.ClaimIsAdmin, ClaimValue: "true"}
		if err := f.db.Create(&claim).Error; err != nil {
			return nil, err
		}
	}
	return &admin, nil
}

// CreateQuestion persists a question and attaches tags.
func (f *Factory) CreateQuestion(author *models.User, tags []models.Tag) (*models.Question, error) {
	q := &models.Question{
		Title:     truncate(f.faker.Question(), 100),
		Body:      truncate(f.faker.Paragraph(1, 3, 10, " "), 1000),
		DateAdded: f.pastTime(),
		Views:     f.faker.Number(0, 500),
		Votes:     f.faker.Number(-3, 25),
		UserID:    author.ID,
	}
	err := f.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(q).Error; err != nil {
			return err
		}
		for _, tag := range tags {
			if err := tx.Create(&models.QuestionTag{QuestionID: q.ID, TagID: tag.ID}).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return q, nil
}

// CreateAnswer persists an answer dated after its question.
func (f *Factory) CreateAnswer(author *models.User, q *models.Question) (*models.Answer, error) {
	a := &models.Answer{
		Body:       truncate(f.faker.Paragraph(1, 4, 12, " "), 1000),
		DateAdded:  q.DateAdded.Add(time.Duration(f.faker.Number(1, 72*60)) * time.Minute),
		QuestionID: q.ID,
		Votes:      f.faker.Number(-2, 15),
		IsAccepted: f.faker.Number(0, 4) == 0,
		UserID:     author.ID,
	}
	if err := f.db.Omit(clause.Associations).Create(a).Error; err != nil {
		return nil, err
	}
	return a, nil
}

// CreateQuestionComment persists a comment on q.
func (f *Factory) CreateQuestionComment(author *models.User, q *models.Question) (*models.QuestionComment, error) {
	c := &models.QuestionComment{
		Body:       truncate(f.faker.Sentence(f.faker.Number(4, 16)), 1000),
		DateAdded:  q.DateAdded.Add(time.Duration(f.faker.Number(1, 48*60)) * time.Minute),
		QuestionID: q.ID,
		UserID:     author.ID,
	}
	if err := f.db.Omit(clause.Associations).Create(c).Error; err != nil {
		return nil, err
	}
	return c, nil
}

// CreateAnswerComment persists a comment on a.
func (f *Factory) CreateAnswerComment(author *models.User, a *models.Answer) (*models.AnswerComment, error) {
	c := &models.AnswerComment{
		Body:      truncate(f.faker.Sentence(f.faker.Number(4, 16)), 1000),
		DateAdded: a.DateAdded.Add(time.Duration(f.faker.Number(1, 48*60)) * time.Minute),
		AnswerID:  a.ID,
		UserID:    author.ID,
	}
	if err := f.db.Omit(clause.Associations).Create(c).Error; err != nil {
		return nil, err
	}
	return c, nil
}
