package handlers

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"

	"postboard/internal/logger"
	"postboard/internal/metrics"
	"postboard/internal/models"
	"postboard/internal/service"

	"github.com/gin-gonic/gin"

	_ "postboard/docs"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

//go:embed templates/*.html
var templatesFS embed.FS

//go:embed static
var staticFS embed.FS

const (
	defaultAvatarPath  = "/static/default.png"
	maxMultipartMemory = 8 << 20
)

// AvatarURLer resolves a stored avatar name to the URL it is served from.
type AvatarURLer interface {
	URL(name string) string
}

// Options carries the HTTP-layer knobs that come from configuration.
type Options struct {
	CookieSecure bool
	// UploadDir is served under UploadURLPrefix when avatars live on local disk.
	UploadDir       string
	UploadURLPrefix string
	Avatars         AvatarURLer
	// MaxAvatarBytes bounds the update-profile request body; zero means the service default.
	MaxAvatarBytes int64
	Metrics        *metrics.Metrics
}

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services *service.Service
	log      *logger.Logger
	opts     Options
}

// NewHandler constructs a new HTTP handler with dependencies.
func NewHandler(services *service.Service, log *logger.Logger, opts Options) *Handler {
	return &Handler{services: services, log: log, opts: opts}
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), h.requestLogger, h.requestMetrics)
	router.MaxMultipartMemory = maxMultipartMemory
	router.SetHTMLTemplate(h.templates())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/health", h.health)
	if h.opts.Metrics != nil {
		router.GET("/metrics", gin.WrapH(h.opts.Metrics.Handler()))
	}

	h.registerAssetRoutes(router)
	h.registerAuthRoutes(router)
	h.registerPrivateRoutes(router)

	return router
}

func (h *Handler) registerAssetRoutes(r *gin.Engine) {
	static, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	r.StaticFS("/static", http.FS(static))

	if h.opts.UploadDir != "" && h.opts.UploadURLPrefix != "" {
		r.Static(h.opts.UploadURLPrefix, h.opts.UploadDir)
	}
}

func (h *Handler) registerAuthRoutes(r *gin.Engine) {
	r.GET("/", h.registerForm)
	r.GET("/login", h.loginForm)
	r.POST("/register", h.register)
	r.POST("/login", h.login)
	r.GET("/logout", h.logout)
}

func (h *Handler) registerPrivateRoutes(r *gin.Engine) {
	r.GET("/profile", h.requireAuth(h.profile))
	r.POST("/post", h.requireAuth(h.createPost))
	r.GET("/delete/:id", h.requireAuth(h.deletePost))
	r.GET("/edit/:id", h.requireAuth(h.editForm))
	r.POST("/edit/:id", h.requireAuth(h.editPost))

	r.GET("/profile/update/:id", h.requireAuth(h.profileForm))
	r.POST("/profile/update/:id", h.requireAuth(h.updateProfile))
	r.GET("/profile/stream", h.requireAuth(h.profileStream))

	r.GET("/activity", h.requireAuth(h.getActivity))
}

func (h *Handler) templates() *template.Template {
	return template.Must(template.New("").Funcs(template.FuncMap{
		"avatarURL": h.avatarURL,
	}).ParseFS(templatesFS, "templates/*.html"))
}

func (h *Handler) avatarURL(name string) string {
	if name == "" || name == models.DefaultImage || h.opts.Avatars == nil {
		return defaultAvatarPath
	}
	return h.opts.Avatars.URL(name)
}

// @Summary      Liveness check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
