package container

import (
	"log/slog"

	"github.com/cloudinary/cloudinary-go/v2"
	graphql "github.com/graph-gophers/graphql-go"
	"github.com/joshua-takyi/realtorhub/internal/cache"
	"github.com/joshua-takyi/realtorhub/internal/config"
	"github.com/joshua-takyi/realtorhub/internal/graph"
	"github.com/joshua-takyi/realtorhub/internal/helpers"
	"github.com/joshua-takyi/realtorhub/internal/meeting"
	"github.com/joshua-takyi/realtorhub/internal/models"
	"github.com/joshua-takyi/realtorhub/internal/notify"
	"github.com/joshua-takyi/realtorhub/internal/realtime"
	"github.com/joshua-takyi/realtorhub/internal/services"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

const mailQueueSize = 256

// Container holds all application dependencies
type Container struct {
	Config *config.Config
	Logger *slog.Logger

	MongoDBClient *mongo.Client
	RedisClient   *redis.Client
	Repo          *models.MongodbRepo

	Mail   *notify.Dispatcher
	Tokens *helpers.TokenManager

	UserService         *services.UserService
	PropertyService     *services.PropertyService
	BookingService      *services.BookingService
	AvailabilityService *services.AvailabilityService
	ChatService         *services.ChatService

	Schema *graphql.Schema
	Hub    *realtime.Hub
}

// NewContainer wires the services on top of the given clients. redisClient
// and cld may be nil; caching and image hosting are then skipped and chat
// fan-out stays in process.
func NewContainer(
	cfg *config.Config,
	logger *slog.Logger,
	mongoDBClient *mongo.Client,
	redisClient *redis.Client,
	cld *cloudinary.Cloudinary,
) *Container {
	repo := models.MongodbNewRepo(mongoDBClient, cfg.MongoDBDatabase)

	var mailer notify.Mailer = notify.NewLogMailer(logger)
	if cfg.SMTPEnabled() {
		mailer = notify.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPFrom)
	} else {
		logger.Warn("SMTP is not configured, emails will only be logged")
	}
	mail := notify.NewDispatcher(mailer, logger, mailQueueSize)

	var images services.ImageUploader
	if cld != nil {
		images = helpers.NewCloudinaryUploader(cld)
	}

	var broker realtime.Broker = realtime.NewLocalBroker()
	if redisClient != nil {
		broker = realtime.NewRedisBroker(redisClient, logger)
	}

	tokens := helpers.NewTokenManager(cfg.JWTSecret, cfg.JWTExpiry)
	zoom := meeting.NewZoomClient(meeting.ZoomConfig{
		AccountID:    cfg.ZoomAccountID,
		ClientID:     cfg.ZoomClientID,
		ClientSecret: cfg.ZoomClientSecret,
	}, nil)

	userService := services.NewUserService(repo, tokens, mail, images, cfg.AppURL, logger)
	propertyService := services.NewPropertyService(repo, cache.New(redisClient, cfg.CacheTTL), images, logger)
	bookingService := services.NewBookingService(repo, repo, repo, mail, zoom, services.BookingServiceConfig{
		OfficeAddress: cfg.OfficeAddress,
		Timezone:      cfg.Timezone,
	}, logger)
	availabilityService := services.NewAvailabilityService(repo)
	chatService := services.NewChatService(repo, repo, repo)

	resolver := graph.NewResolver(userService, propertyService, bookingService, availabilityService)

	return &Container{
		Config:              cfg,
		Logger:              logger,
		MongoDBClient:       mongoDBClient,
		RedisClient:         redisClient,
		Repo:                repo,
		Mail:                mail,
		Tokens:              tokens,
		UserService:         userService,
		PropertyService:     propertyService,
		BookingService:      bookingService,
		AvailabilityService: availabilityService,
		ChatService:         chatService,
		Schema:              graph.NewSchema(resolver),
		Hub:                 realtime.NewHub(chatService, userService, broker, logger, cfg.FrontendOrigins),
	}
}
