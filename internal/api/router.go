package api

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"postboard/internal/metrics"
	"postboard/internal/token"
)

type Router struct {
	Engine *gin.Engine
}

func NewRouter(
	authHandler *AuthHandler,
	postHandler *PostHandler,
	issuer *token.Issuer,
	db *pgxpool.Pool,
) *Router {
	r := gin.Default()
	r.Use(metrics.GinMiddleware())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.HEAD("/healthz", func(c *gin.Context) {
		c.Status(200)
	})
	r.GET("/readyz", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c, 1*time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			c.JSON(500, gin.H{"status": "db_not_ready", "error": err.Error()})
			return
		}
		c.JSON(200, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	identified := Identifier(issuer)

	auth := r.Group("/api/auth")
	{
		auth.POST("/signup", authHandler.Signup)
		auth.POST("/signin", authHandler.Signin)
		auth.POST("/signout", identified, authHandler.Signout)

		auth.PATCH("/send-verification-code", identified, authHandler.SendVerificationCode)
		auth.PATCH("/verify-verification-code", identified, authHandler.VerifyVerificationCode)
		auth.PATCH("/change-password", identified, authHandler.ChangePassword)
		auth.PATCH("/send-forgot-password-code", authHandler.SendForgotPasswordCode)
		auth.PATCH("/verify-forgot-password-code", authHandler.VerifyForgotPasswordCode)
	}

	posts := r.Group("/api/posts")
	{
		posts.GET("/all-posts", postHandler.GetPosts)
		posts.GET("/single-post", postHandler.SinglePost)
		posts.POST("/create-post", identified, postHandler.CreatePost)
		posts.PUT("/update-post", identified, postHandler.UpdatePost)
		posts.DELETE("/delete-post", identified, postHandler.DeletePost)
	}

	return &Router{Engine: r}
}

func (r *Router) Run(port string) error {
	return r.Engine.Run(port)
}
