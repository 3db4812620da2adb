package seed

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"recipebox/internal/models"
	"recipebox/internal/service"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCase = cases.Title(language.English)

// DefaultPassword is the password of every generated account.
const DefaultPassword = "Password123"

// Factory builds realistic demo entities with gofakeit. It writes through the
// domain services so generated data obeys the same rules as API traffic.
type Factory struct {
	svc      *service.Services
	faker    *gofakeit.Faker
	tagNames []string
	password string
	seq      int
}

// NewFactory creates a factory. A zero randSeed picks a random seed; any
// other value makes the generated content reproducible.
func NewFactory(svc *service.Services, tagNames []string, password string, randSeed int64) *Factory {
	if password == "" {
		password = DefaultPassword
	}
	return &Factory{
		svc:      svc,
		faker:    gofakeit.New(randSeed),
		tagNames: tagNames,
		password: password,
	}
}

// CreateUser registers a user with a generated, valid username.
func (f *Factory) CreateUser(ctx context.Context, overrides ...func(*service.RegisterInput)) (*models.User, error) {
	f.seq++
	username := f.username()
	in := service.RegisterInput{
		Username: username,
		Email:    username + "@example.com",
		Password: f.password,
	}
	for _, override := range overrides {
		override(&in)
	}
	return f.svc.Users.Register(ctx, in)
}

func (f *Factory) username() string {
	base := strings.Map(func(r rune) rune {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			return unicode.ToLower(r)
		}
		return -1
	}, f.faker.FirstName())
	if base == "" {
		base = "cook"
	}
	if len(base) > 20 {
		base = base[:20]
	}
	return fmt.Sprintf("%s%d", base, f.seq)
}

// BuildRecipe returns a recipe input with generated content and one to
// three tags from the vocabulary.
func (f *Factory) BuildRecipe(author *models.User, overrides ...func(*service.CreateRecipeInput)) service.CreateRecipeInput {
	in := service.CreateRecipeInput{
		AuthorID:     author.ID,
		Title:        f.title(),
		Description:  f.faker.Sentence(12),
		Ingredients:  f.ingredients(f.faker.Number(3, 8)),
		Instructions: f.instructions(f.faker.Number(2, 6)),
		IsPublic:     f.faker.Float32Range(0, 1) < 0.7,
		Cooked:       f.faker.Bool(),
		Favourite:    f.faker.Float32Range(0, 1) < 0.25,
		Tags:         f.pickTags(f.faker.Number(1, 3)),
	}
	for _, override := range overrides {
		override(&in)
	}
	return in
}

// CreateRecipe persists a generated recipe for author.
func (f *Factory) CreateRecipe(ctx context.Context, author *models.User, overrides ...func(*service.CreateRecipeInput)) (*models.Recipe, error) {
	return f.svc.Recipes.Create(ctx, f.BuildRecipe(author, overrides...))
}

// ForkRecipe forks source for owner, keeping tags half of the time.
func (f *Factory) ForkRecipe(ctx context.Context, source *models.Recipe, owner *models.User) (*models.Recipe, error) {
	return f.svc.Recipes.Fork(ctx, source.ID, service.ForkRecipeInput{
		AuthorID:    owner.ID,
		IncludeTags: f.faker.Bool(),
	})
}

// CreateBook collects up to size random recipes from pool for owner.
func (f *Factory) CreateBook(ctx context.Context, owner *models.User, pool []models.Recipe, size int) (*models.RecipeBook, error) {
	ids := make([]uint, 0, size)
	if len(pool) > 0 {
		for _, i := range f.faker.Rand.Perm(len(pool)) {
			if len(ids) == size {
				break
			}
			ids = append(ids, pool[i].ID)
		}
	}
	return f.svc.Books.Create(ctx, service.CreateRecipeBookInput{
		UserID:      owner.ID,
		Name:        titleCase.String(f.faker.Adjective()) + " " + f.faker.RandomString([]string{"Dinners", "Favourites", "Classics", "Bakes", "Weeknights"}),
		Description: f.faker.Sentence(8),
		IsPublic:    f.faker.Bool(),
		RecipeIDs:   ids,
	})
}

func (f *Factory) title() string {
	dish := f.faker.RandomString([]string{
		f.faker.Breakfast(), f.faker.Lunch(), f.faker.Dinner(), f.faker.Snack(), f.faker.Dessert(),
	})
	return strings.TrimSpace(dish)
}

func (f *Factory) ingredients(n int) []models.Ingredient {
	units := []string{"g", "kg", "ml", "l", "tsp", "tbsp", "cup", ""}
	out := make([]models.Ingredient, 0, n)
	for i := 0; i < n; i++ {
		name := f.faker.Vegetable()
		if f.faker.Bool() {
			name = f.faker.Fruit()
		}
		out = append(out, models.Ingredient{
			Name:     strings.ToLower(name),
			Quantity: fmt.Sprintf("%d", f.faker.Number(1, 500)),
			Unit:     f.faker.RandomString(units),
		})
	}
	return out
}

func (f *Factory) instructions(n int) []string {
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, f.faker.Sentence(f.faker.Number(6, 14)))
	}
	return out
}

func (f *Factory) pickTags(n int) []string {
	if len(f.tagNames) == 0 {
		return nil
	}
	out := make([]string, 0, n)
	for _, i := range f.faker.Rand.Perm(len(f.tagNames)) {
		if len(out) == n {
			break
		}
		out = append(out, f.tagNames[i])
	}
	return out
}
