package main

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"

	"github.com/cliniflow/clinic-manager/internal/config"
	dbpkg "github.com/cliniflow/clinic-manager/internal/db"
	"github.com/cliniflow/clinic-manager/internal/middleware"
	"github.com/cliniflow/clinic-manager/internal/policy"
	"github.com/cliniflow/clinic-manager/internal/routes"
)

func main() {

	_ = godotenv.Load()

	cfg := config.Load()
	db := dbpkg.NewDB(cfg)

	var rdb *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatalf("invalid REDIS_URL: %v", err)
		}
		rdb = redis.NewClient(opts)
	} else {
		log.Println("REDIS_URL not set, token revocation disabled")
	}

	enforcer, err := policy.NewEnforcer()
	if err != nil {
		log.Fatalf("failed to build policy enforcer: %v", err)
	}

	r := gin.Default()

	r.Use(middleware.CORSMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	routes.RegisterRoutes(r, db, rdb, enforcer, cfg)

	log.Printf("Server running on %s", cfg.Addr())
	if err := r.Run(cfg.Addr()); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}
