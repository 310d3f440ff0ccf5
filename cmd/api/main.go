package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"time"

	"bookshop/internal/auth"
	"bookshop/internal/book"
	apphttp "bookshop/internal/http"
	"bookshop/internal/shop"
	"bookshop/internal/store"
	"bookshop/internal/user"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load(".env.local")

	serverAddress := getEnv("APP_ADDR", ":8080")
	databaseDSN := os.Getenv("DB_DSN")
	jwtSecret := mustGetEnv("JWT_SECRET")
	hasherName := getEnv("PASSWORD_HASHER", "plain")

	var catalogStore book.Store
	var accountStore user.Store
	var dbPool *pgxpool.Pool

	if databaseDSN == "" {
		log.Println("DB_DSN not set, using in-memory stores")
		catalogStore = store.NewMemCatalog()
		accountStore = store.NewMemAccounts()
	} else {
		dbPool = mustOpenDB(databaseDSN)
		defer dbPool.Close()
		catalogStore = store.NewCatalogPG(dbPool)
		accountStore = store.NewAccountPG(dbPool)
	}

	hasher := pickHasher(hasherName)
	accounts := user.NewService(accountStore, hasher)
	catalog := book.NewService(catalogStore)
	bookshop := shop.New(catalog, accounts)
	sessions := shop.NewRegistry()

	bootstrapAdmin(accounts)

	userHandler := apphttp.NewUserHandler(bookshop, sessions, jwtSecret)
	shopHandler := apphttp.NewShopHandler(bookshop)

	requireAuth := apphttp.AuthMiddleware(jwtSecret, sessions)
	optionalAuth := apphttp.OptionalAuthMiddleware(jwtSecret, sessions)
	rateLimit := apphttp.NewRateLimitMiddleware(10, 20)
	defer rateLimit.Stop()

	router := http.NewServeMux()

	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if dbPool != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
			defer cancel()
			if err := dbPool.Ping(ctx); err != nil {
				http.Error(w, "db not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	router.HandleFunc("/login", methodOnly(http.MethodPost, userHandler.Login))
	router.Handle("/logout", requireAuth(http.HandlerFunc(methodOnly(http.MethodPost, userHandler.Logout))))

	router.Handle("/users", optionalAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			userHandler.AddUser(w, r)
		case http.MethodDelete:
			userHandler.RemoveUser(w, r)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})))

	router.Handle("/books", requireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			shopHandler.Search(w, r)
		case http.MethodPost:
			shopHandler.AddBook(w, r)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})))

	router.Handle("/basket", requireAuth(http.HandlerFunc(methodOnly(http.MethodGet, shopHandler.ViewBasket))))
	router.Handle("/basket/items", requireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			shopHandler.AddToBasket(w, r)
		case http.MethodDelete:
			shopHandler.RemoveFromBasket(w, r)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})))

	router.Handle("/purchase", requireAuth(http.HandlerFunc(methodOnly(http.MethodPost, shopHandler.Purchase))))

	httpServer := &http.Server{
		Addr:         serverAddress,
		Handler:      rateLimit.Middleware(router),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Printf("Starting server on %s", serverAddress)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}
}

func methodOnly(method string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != method {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		next(w, r)
	}
}

func pickHasher(name string) auth.Hasher {
	switch name {
	case "bcrypt":
		return auth.BcryptHasher{}
	case "plain":
		return auth.PlainHasher{}
	}
	log.Fatalf("unknown PASSWORD_HASHER %q (want plain or bcrypt)", name)
	return nil
}

// bootstrapAdmin creates the initial admin account from the environment so a
// fresh deployment (or the in-memory mode) has someone who can mint other
// admins. An existing account is left alone.
func bootstrapAdmin(accounts *user.Service) {
	username := os.Getenv("ADMIN_USERNAME")
	password := os.Getenv("ADMIN_PASSWORD")
	if username == "" || password == "" {
		return
	}

	_, err := accounts.Create(context.Background(), username, password, true)
	if err != nil && !errors.Is(err, user.ErrAlreadyExists) {
		log.Fatalf("cannot bootstrap admin account: %v", err)
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func mustGetEnv(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	log.Fatalf("missing required environment variable: %s", key)
	return ""
}

func mustOpenDB(dsn string) *pgxpool.Pool {
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		log.Fatalf("cannot create db pool: %v", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		log.Fatalf("cannot ping database: %v", err)
	}
	log.Println("database connection OK")
	return pool
}
