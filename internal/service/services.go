package service

import (
	"recipebox/internal/config"
	"recipebox/internal/repository"
	"recipebox/internal/storage"

	"gorm.io/gorm"
)

// Deps are the collaborators needed to build every service.
type Deps struct {
	DB *gorm.DB
	// Hasher defaults to bcrypt at Config.BcryptCost.
	Hasher PasswordHasher
	// Store may be nil when object storage is not configured.
	Store      storage.ObjectStore
	Config     *config.Config
	Vocabulary []TagCategory
}

// Services groups the domain services over one database.
type Services struct {
	Users   *UserService
	Recipes *RecipeService
	Books   *RecipeBookService
	Tags    *TagService
	Images  *ImageService
}

func NewServices(d Deps) *Services {
	userRepo := repository.NewUserRepository(d.DB)
	recipeRepo := repository.NewRecipeRepository(d.DB)
	bookRepo := repository.NewRecipeBookRepository(d.DB)
	tagRepo := repository.NewTagRepository(d.DB)

	hasher := d.Hasher
	if hasher == nil {
		cost := 0
		if d.Config != nil {
			cost = d.Config.BcryptCost
		}
		hasher = NewBcryptHasher(cost)
	}

	return &Services{
		Users:   NewUserService(userRepo, hasher),
		Recipes: NewRecipeService(recipeRepo, userRepo, bookRepo, d.Store),
		Books:   NewRecipeBookService(bookRepo, userRepo),
		Tags:    NewTagService(tagRepo, d.Vocabulary),
		Images:  NewImageService(d.Store, d.Config),
	}
}
