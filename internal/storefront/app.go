// Package storefront assembles the client application: persisted state,
// session, cart, remote clients and the services built on them.
package storefront

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/redis/go-redis/v9"

	"storefront/internal/api"
	"storefront/internal/cart"
	"storefront/internal/checkout"
	"storefront/internal/config"
	"storefront/internal/db"
	"storefront/internal/domain"
	"storefront/internal/seller"
	"storefront/internal/session"
	"storefront/internal/storage"
)

// App is the application context handed to every entry point.
type App struct {
	Session  *session.Session
	Cart     *cart.Store
	Catalog  *api.CatalogClient
	Orders   *api.OrderClient
	Auth     *api.AuthClient
	Checkout *checkout.Service
	Seller   *seller.Dashboard

	storage storage.Storage
	logger  *log.Logger
	closers []func()
}

// New wires an App on st and restores the persisted session.
func New(ctx context.Context, cfg config.Config, st storage.Storage, logger *log.Logger) (*App, error) {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	sess := session.New(st, logger)
	if err := sess.Restore(ctx); err != nil {
		return nil, fmt.Errorf("restore session: %w", err)
	}

	client, err := api.NewClient(cfg.APIBaseURL, api.Options{
		HTTP:        &http.Client{Timeout: cfg.HTTPTimeout},
		Credentials: sess,
		OnUnauthorized: func(ctx context.Context) {
			if err := sess.Expire(ctx); err != nil {
				logger.Printf("storefront: expire session error=%v", err)
			}
		},
		Logger: logger,
	})
	if err != nil {
		return nil, err
	}

	store := cart.New(st, logger)
	catalog := api.NewCatalogClient(client)
	orders := api.NewOrderClient(client)

	return &App{
		Session:  sess,
		Cart:     store,
		Catalog:  catalog,
		Orders:   orders,
		Auth:     api.NewAuthClient(client),
		Checkout: checkout.New(store, orders, sess, logger),
		Seller:   seller.New(catalog, sess, st, logger),
		storage:  st,
		logger:   logger,
	}, nil
}

// Open selects the storage backend named by cfg.Storage and builds the App
// on it. Close releases the backend.
func Open(ctx context.Context, cfg config.Config, logger *log.Logger) (*App, error) {
	st, closer, err := OpenStorage(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	app, err := New(ctx, cfg, st, logger)
	if err != nil {
		if closer != nil {
			closer()
		}
		return nil, err
	}
	if closer != nil {
		app.closers = append(app.closers, closer)
	}
	return app, nil
}

// OpenStorage returns the configured backend, namespaced by profile, and an
// optional function releasing its connections.
func OpenStorage(ctx context.Context, cfg config.Config, logger *log.Logger) (storage.Storage, func(), error) {
	switch cfg.Storage {
	case storage.KindMemory:
		return storage.NewMemory(), nil, nil
	case storage.KindFile, "":
		return storage.NewFile(cfg.StateFile, cfg.Profile, logger), nil, nil
	case storage.KindRedis:
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("connect redis: %w", err)
		}
		return storage.NewRedis(client, cfg.Profile), func() { _ = client.Close() }, nil
	case storage.KindPostgres:
		pool, err := db.Connect(ctx, cfg.DBConnString, db.WithApplicationName("storefront-client"), db.WithMaxConns(2))
		if err != nil {
			return nil, nil, fmt.Errorf("connect db: %w", err)
		}
		return storage.NewPostgres(pool, cfg.Profile, logger), pool.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Storage)
	}
}

func (a *App) Close() {
	for _, c := range a.closers {
		c()
	}
	a.closers = nil
}

// Login authenticates against the backend and begins a session. It returns
// where the user should land next.
func (a *App) Login(ctx context.Context, username, password string) (domain.Session, string, error) {
	sess, err := a.Auth.Login(ctx, username, password)
	if err != nil {
		return domain.Session{}, "", err
	}
	if err := a.Session.Begin(ctx, sess); err != nil {
		return domain.Session{}, "", err
	}
	a.logger.Printf("storefront: login username=%s role=%s", sess.Username, sess.Role)
	if sess.Role == domain.RoleSeller {
		return sess, "/seller/dashboard", nil
	}
	return sess, "/", nil
}

// Logout ends the session and drops everything the signed-out user left
// behind locally: the cart and any seller form draft. Expiry keeps them.
func (a *App) Logout(ctx context.Context) error {
	if err := a.Session.End(ctx); err != nil {
		return err
	}
	if err := a.Cart.Clear(ctx); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	if err := a.Seller.ClearDraft(ctx); err != nil {
		return fmt.Errorf("clear draft: %w", err)
	}
	return nil
}

func (a *App) Register(ctx context.Context, in api.RegisterInput) error {
	if in.Username == "" || in.Password == "" {
		return errors.New("username and password required")
	}
	return a.Auth.Register(ctx, in)
}

// AddToCart fetches the product so the cart snapshots current catalog data.
func (a *App) AddToCart(ctx context.Context, productID int64) (domain.Cart, error) {
	p, err := a.Catalog.GetProduct(ctx, productID)
	if err != nil {
		return domain.Cart{}, err
	}
	if p.ID != productID {
		return domain.Cart{}, &api.ParseError{Op: "get product", Reason: fmt.Sprintf("asked for id %d, got %d", productID, p.ID)}
	}
	return a.Cart.AddOrIncrement(ctx, *p)
}
