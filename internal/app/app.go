package app

import (
	"context"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"gorm.io/gorm"

	"github.com/velez/storefront/internal/adapters/cache"
	"github.com/velez/storefront/internal/adapters/httpserver"
	"github.com/velez/storefront/internal/adapters/payments/stripe"
	"github.com/velez/storefront/internal/adapters/repo/postgres"
	"github.com/velez/storefront/internal/domain"
	"github.com/velez/storefront/internal/usecase"
)

const searchCacheTTL = 300 * time.Second

type App struct {
	DB        *gorm.DB
	ProductUC *usecase.ProductUC
	BasketUC  *usecase.BasketUC
	OrderUC   *usecase.OrderUC
	PaymentUC *usecase.PaymentUC

	Users       domain.UserRepo
	Settings    domain.SettingRepo
	OAuthConfig *oauth2.Config
}

func NewApp(db *gorm.DB) (*App, error) {
	prodRepo := postgres.NewProductRepo(db)
	basketRepo := postgres.NewBasketRepo(db)
	orderRepo := postgres.NewOrderRepo(db)
	userRepo := postgres.NewUserRepo(db)
	settingRepo := postgres.NewSettingRepo(db)
	featuredRepo := postgres.NewFeaturedProductRepo(db)

	gateway := stripe.NewGateway(os.Getenv("STRIPE_SECRET_KEY"))

	var oauthCfg *oauth2.Config
	googleID := os.Getenv("GOOGLE_CLIENT_ID")
	googleSecret := os.Getenv("GOOGLE_CLIENT_SECRET")
	baseURL := os.Getenv("PUBLIC_BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	if googleID != "" && googleSecret != "" {
		oauthCfg = &oauth2.Config{
			ClientID:     googleID,
			ClientSecret: googleSecret,
			RedirectURL:  baseURL + "/auth/google/callback",
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		}
	}

	app := &App{DB: db, Users: userRepo, Settings: settingRepo, OAuthConfig: oauthCfg}
	app.ProductUC = &usecase.ProductUC{
		Products: prodRepo,
		Featured: featuredRepo,
		Search:   cache.NewSearchCache(searchCacheTTL),
	}
	app.OrderUC = &usecase.OrderUC{Orders: orderRepo, Products: prodRepo, Baskets: basketRepo}
	app.PaymentUC = &usecase.PaymentUC{
		Baskets:  basketRepo,
		Products: prodRepo,
		Orders:   app.OrderUC,
		Gateway:  gateway,
		Notify:   httpserver.NotifyOrderPaid,
	}
	app.BasketUC = &usecase.BasketUC{Baskets: basketRepo, Products: prodRepo, Payments: app.PaymentUC}

	return app, nil
}

func (a *App) HTTPHandler() http.Handler {
	return httpserver.New(a.ProductUC, a.BasketUC, a.OrderUC, a.PaymentUC, a.Users, a.Settings, a.OAuthConfig)
}

func (a *App) MigrateAndSeed() error {
	if err := a.DB.AutoMigrate(
		&domain.Product{}, &domain.ProductImage{}, &domain.ProductAttribute{}, &domain.FeaturedProduct{},
		&domain.Basket{}, &domain.BasketItem{},
		&domain.Order{}, &domain.OrderItem{},
		&domain.User{}, &domain.Setting{},
	); err != nil {
		return err
	}

	_ = a.DB.Exec("CREATE INDEX IF NOT EXISTS idx_products_variant_group ON products(variant_group)").Error
	_ = a.DB.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_basket_items_basket_product ON basket_items(basket_id, product_id)").Error
	_ = a.DB.Exec("CREATE INDEX IF NOT EXISTS idx_orders_status ON orders(status)").Error

	if err := seedAdmin(a.DB); err != nil {
		return err
	}

	appEnv := strings.ToLower(os.Getenv("APP_ENV"))
	if appEnv == "" || appEnv == "dev" || appEnv == "development" {
		seedProducts(a.DB)
	}
	return nil
}

// seedAdmin creates the bootstrap admin account from ADMIN_EMAIL and
// ADMIN_PASSWORD when no admin exists yet.
func seedAdmin(db *gorm.DB) error {
	email := strings.ToLower(strings.TrimSpace(os.Getenv("ADMIN_EMAIL")))
	pass := os.Getenv("ADMIN_PASSWORD")
	if email == "" || pass == "" {
		return nil
	}
	var count int64
	if err := db.Model(&domain.User{}).Where("is_admin = ?", true).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(pass), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u := domain.User{ID: uuid.New(), Email: email, Name: "Admin", PasswordHash: string(hash), IsAdmin: true}
	if err := db.Create(&u).Error; err != nil {
		return err
	}
	log.Info().Str("email", email).Msg("seeded admin user")
	return nil
}

func seedProducts(db *gorm.DB) {
	var count int64
	if err := db.WithContext(context.Background()).Model(&domain.Product{}).Count(&count).Error; err != nil || count > 0 {
		return
	}
	prods := []domain.Product{
		{ID: uuid.New(), Title: "Canvas Tote Bag", Description: "Heavy cotton tote", Price: 18.50, Stock: 40},
		{ID: uuid.New(), Title: "Enamel Mug", Description: "Camping mug, 350ml", Price: 12.00, Stock: 25},
		{ID: uuid.New(), Title: "Desk Organizer", Description: "Bamboo, three trays", Price: 29.90, Stock: 12},
		{ID: uuid.New(), Title: "Notebook A5", Description: "Dotted, 160 pages", Price: 8.75, Stock: 60},
		{ID: uuid.New(), Title: "Water Bottle", Price: 21.00, Stock: 0},
	}
	for _, p := range prods {
		db.Create(&p)
	}
}
