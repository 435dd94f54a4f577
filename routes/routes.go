package routes

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tradie-match-server/apperror"
	"tradie-match-server/calendar"
	"tradie-match-server/discovery"
	"tradie-match-server/logger"
	"tradie-match-server/middleware"
	"tradie-match-server/models"
	"tradie-match-server/services"
	"tradie-match-server/types"
)

// AuthAPI is the account surface used by the auth routes.
type AuthAPI interface {
	SignUp(ctx context.Context, req services.SignUpRequest, session services.Session) (*services.AuthResult, error)
	SignIn(ctx context.Context, email, password string, session services.Session) (*services.AuthResult, error)
	Refresh(ctx context.Context, refreshToken string) (*services.TokenPair, error)
	SignOut(ctx context.Context, accountID, refreshToken string) error
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, password, confirm string) error
	SendVerification(ctx context.Context, accountID string) error
	VerifyEmail(ctx context.Context, token string) error
	Me(ctx context.Context, accountID string) (*models.Account, *models.Profile, error)
	DeleteAccount(ctx context.Context, claims *types.Claims, req services.DeleteAccountRequest) error
}

type ProfileAPI interface {
	Get(ctx context.Context, id string) (*models.Profile, error)
	Update(ctx context.Context, accountID string, req services.UpdateProfileRequest) (*models.Profile, error)
	UpdateLocation(ctx context.Context, accountID string, loc services.LocationUpdate) (*models.Profile, error)
	GeolocationFailed(accountID string, code int) string
	AddPhoto(ctx context.Context, accountID string, file services.Upload) (*models.Profile, error)
	SubmitVerification(ctx context.Context, accountID string, file services.Upload) (*models.Profile, error)
	Block(ctx context.Context, accountID, targetID, source string) error
	Unblock(ctx context.Context, accountID, targetID string) error
	ListBlocked(ctx context.Context, accountID string) ([]models.BlockedUser, error)
}

type CalendarAPI interface {
	Get(ctx context.Context, accountID string) (calendar.Calendar, error)
	Toggle(ctx context.Context, accountID, dateKey string, slot calendar.Slot) (calendar.Calendar, error)
	Block(ctx context.Context, accountID, dateKey, rangeName string) (calendar.Calendar, error)
	Clear(ctx context.Context, accountID, dateKey, rangeName string) (*services.ClearResult, error)
	Status(ctx context.Context, tradieID string) (*services.CalendarStatus, error)
}

// JobAPI maps every job endpoint onto one lifecycle operation.
type JobAPI interface {
	Request(ctx context.Context, clientID string, req services.CreateJobRequest) (*models.Job, error)
	Approve(ctx context.Context, accountID, jobID string) (*models.Job, error)
	Decline(ctx context.Context, accountID, jobID, reason string) (*models.Job, error)
	Accept(ctx context.Context, accountID, jobID string) (*models.Job, error)
	RequestInfo(ctx context.Context, accountID, jobID string) (*models.Job, error)
	ProvideInfo(ctx context.Context, accountID, jobID, description string, files []services.Upload) (*models.Job, error)
	Quote(ctx context.Context, accountID, jobID string, req services.QuoteRequest) (*models.Job, error)
	AcceptQuote(ctx context.Context, accountID, jobID string) (*models.Job, error)
	DeclineQuote(ctx context.Context, accountID, jobID string) (*models.Job, error)
	RequestBooking(ctx context.Context, accountID, jobID string, req services.BookingRequest) (*models.Job, error)
	ConfirmBooking(ctx context.Context, accountID, jobID string) (*models.Job, error)
	Pay(ctx context.Context, accountID, jobID string) (*models.Job, error)
	Start(ctx context.Context, accountID, jobID string) (*models.Job, error)
	Complete(ctx context.Context, accountID, jobID string) (*models.Job, error)
	Review(ctx context.Context, accountID, jobID string, req services.ReviewRequest) (*models.Job, error)
	Get(ctx context.Context, accountID, jobID string) (*services.JobView, error)
	List(ctx context.Context, accountID string) (*services.JobList, error)
	PendingCount(ctx context.Context, accountID string) (int, error)
}

type AdvertAPI interface {
	Create(ctx context.Context, clientID string, req services.CreateAdvertRequest) (*models.JobAdvert, error)
	Delete(ctx context.Context, clientID, advertID string) error
	ListMine(ctx context.Context, clientID string) ([]models.JobAdvert, error)
	Board(ctx context.Context, tradieID string) ([]models.JobAdvert, error)
	Hide(ctx context.Context, tradieID, advertID string) error
	Accept(ctx context.Context, tradieID, advertID string) (*models.Job, error)
}

type DiscoveryAPI interface {
	Feed(ctx context.Context, viewerID string, mode discovery.Mode, f discovery.Filters) ([]discovery.Tile, error)
}

type ChatAPI interface {
	Open(ctx context.Context, accountID, otherID string) (*models.ChatThread, error)
	Threads(ctx context.Context, accountID string) ([]models.ChatThread, error)
	Messages(ctx context.Context, accountID, threadID string, limit int) ([]models.ChatMessage, error)
	Send(ctx context.Context, accountID, threadID, body string) (*models.ChatMessage, error)
}

type ReportAPI interface {
	Submit(ctx context.Context, reporterID string, req services.ReportRequest) (*models.Report, error)
	Mine(ctx context.Context, reporterID string) ([]models.Report, error)
}

// HealthChecker reports whether a backing service is reachable.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// Dependencies is everything the router needs. Stream is the WebSocket
// handler; it is mounted behind token-in-query auth when set.
type Dependencies struct {
	Tokens         middleware.TokenValidator
	Auth           AuthAPI
	Profiles       ProfileAPI
	Calendar       CalendarAPI
	Jobs           JobAPI
	Adverts        AdvertAPI
	Discovery      DiscoveryAPI
	Chat           ChatAPI
	Reports        ReportAPI
	Stream         gin.HandlerFunc
	Health         map[string]HealthChecker
	AllowedOrigins []string
	RateRules      []middleware.RateRule
	Log            logger.Logger
}

// Handler holds the services behind every route.
type Handler struct {
	deps Dependencies
	log  logger.Logger
}

// NewRouter builds the gin engine with the full middleware chain and all
// API routes. The returned limiters are swept by the caller.
func NewRouter(deps Dependencies) (*gin.Engine, []*middleware.RateLimiter) {
	if deps.Log == nil {
		deps.Log = logger.Nop()
	}
	h := &Handler{deps: deps, log: deps.Log}

	apiLimiter := middleware.NewRateLimiter(deps.RateRules)
	authLimiter := middleware.AuthRateLimiter()

	router := gin.New()
	router.Use(middleware.Recovery(deps.Log))
	router.Use(middleware.RequestLogger(deps.Log))
	router.Use(middleware.SecurityHeadersMiddleware())
	router.Use(middleware.CORSMiddleware(deps.AllowedOrigins))
	router.Use(middleware.InputValidationMiddleware())
	router.Use(apiLimiter.Middleware(deps.Log))

	router.GET("/health", h.health)

	api := router.Group("/api/v1")
	authRequired := middleware.AuthMiddleware(deps.Tokens, deps.Log)

	h.registerAuthRoutes(api.Group("/auth"), authRequired, authLimiter.Middleware(deps.Log))
	h.registerProfileRoutes(api.Group("/profiles", authRequired))
	h.registerCalendarRoutes(api.Group("/calendar", authRequired, middleware.RequireRole(string(models.RoleTradie))))
	h.registerJobRoutes(api.Group("/jobs", authRequired))
	h.registerAdvertRoutes(api.Group("/adverts", authRequired))
	h.registerDiscoveryRoutes(api.Group("/discovery", authRequired))
	h.registerChatRoutes(api.Group("/chats", authRequired))
	h.registerReportRoutes(api.Group("/reports", authRequired))

	if deps.Stream != nil {
		api.GET("/ws", middleware.WebSocketAuthMiddleware(deps.Tokens, deps.Log), deps.Stream)
	}

	return router, []*middleware.RateLimiter{apiLimiter, authLimiter}
}

func (h *Handler) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status, overall := http.StatusOK, "ok"
	checks := gin.H{}
	for name, checker := range h.deps.Health {
		if err := checker.Ping(ctx); err != nil {
			h.log.Warn("⚠️ Health check failed", zap.String("component", name), zap.Error(err))
			checks[name] = "down"
			status, overall = http.StatusServiceUnavailable, "degraded"
			continue
		}
		checks[name] = "ok"
	}
	c.JSON(status, gin.H{
		"status":    overall,
		"checks":    checks,
		"timestamp": time.Now().UTC(),
	})
}

// respondError writes err with the status its base error maps to. Server
// side failures are logged; client errors are not.
func (h *Handler) respondError(c *gin.Context, err error) {
	status := apperror.ToHTTPStatus(err)
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
		h.log.Error("❌ Request error", err,
			zap.String("path", c.FullPath()),
			zap.String("account_id", middleware.AccountID(c)))
	}
	c.JSON(status, apperror.ToJSON(err))
}

// bindJSON decodes the body into dst and answers 400 on failure.
func (h *Handler) bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		h.respondError(c, apperror.NewInvalidInput("Invalid request data", err))
		return false
	}
	return true
}

func session(c *gin.Context) services.Session {
	return services.Session{UserAgent: c.Request.UserAgent(), IPAddress: c.ClientIP()}
}

const maxMultipartMemory = 10 << 20

// readUploads reads up to max image files of field from a multipart form.
func readUploads(c *gin.Context, field string, max int) ([]services.Upload, error) {
	if err := c.Request.ParseMultipartForm(maxMultipartMemory); err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, apperror.NewInvalidInput("Invalid form data", err)
	}
	headers := c.Request.MultipartForm.File[field]
	if len(headers) > max {
		return nil, apperror.NewValidation("Too many photos")
	}
	uploads := make([]services.Upload, 0, len(headers))
	for _, fh := range headers {
		u, err := readUpload(fh)
		if err != nil {
			return nil, err
		}
		uploads = append(uploads, u)
	}
	return uploads, nil
}

func readUpload(fh *multipart.FileHeader) (services.Upload, error) {
	if err := services.ValidateImage(fh.Filename, fh.Size); err != nil {
		return services.Upload{}, err
	}
	f, err := fh.Open()
	if err != nil {
		return services.Upload{}, apperror.NewInvalidInput("Could not read the uploaded file", err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return services.Upload{}, apperror.NewInvalidInput("Could not read the uploaded file", err)
	}
	return services.Upload{Filename: fh.Filename, Data: data}, nil
}

// singleUpload reads exactly one image from field.
func singleUpload(c *gin.Context, field string) (services.Upload, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return services.Upload{}, apperror.NewValidation("Please choose a photo to upload")
	}
	return readUpload(fh)
}
