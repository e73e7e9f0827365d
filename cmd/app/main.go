package main

import (
	"fmt"

	"github.com/labstack/gommon/log"

	"messenger/configs"
	"messenger/internal"
	"messenger/internal/handlers"
	"messenger/internal/models"
	"messenger/internal/services"
	"messenger/internal/services/token_service"
	"messenger/internal/storage"
	firebaseClient "messenger/pkg/firebase_client"
	gormClient "messenger/pkg/gorm_client"
	redisClient "messenger/pkg/redis_client"
)

const webPort = 80

func main() {
	clientGORM, err := gormClient.NewClient()
	if err != nil {
		log.Fatalf("error with creating New Gorm Client: %s", err)
	}
	err = clientGORM.AutoMigrate(
		models.User{},
		models.Chat{},
		models.Device{},
		models.Message{},
		models.DeliveryReceipt{},
		models.PendingAck{},
	)
	if err != nil {
		log.Fatalf("error Automigrate: %s", err)
	}

	ctx, messagingClient, err := firebaseClient.SetupFirebase()
	if err != nil {
		log.Printf("push notifications disabled: %s", err)
		messagingClient = nil
	}

	clientREDIS, err := redisClient.NewClient(ctx)
	if err != nil {
		log.Fatalf("error creating redis client: %s", err)
	}

	userRepo := storage.NewUserRepo(clientGORM)
	messageRepo := storage.NewMessageRepo(clientGORM)
	chatRepo := storage.NewChatRepo(clientGORM)
	receiptRepo := storage.NewReceiptRepo(clientGORM)
	deviceRepo := storage.NewDeviceRepo(clientGORM)

	tokenServ := token_service.NewService(clientREDIS)
	presence := services.NewPresence()
	broadcaster := services.NewRedisBroadcaster(clientREDIS)

	var pushSender services.PushSender
	if messagingClient != nil {
		pushSender = services.NewFCMSender(messagingClient)
	}
	dispatcher := services.NewPushDispatcher(pushSender, deviceRepo)

	messageService := services.NewMessageService(
		messageRepo, chatRepo, userRepo, deviceRepo,
		broadcaster, dispatcher, presence,
	)
	statusService := services.NewStatusService(messageRepo, receiptRepo, chatRepo, broadcaster)

	baseHandler := handlers.NewBaseHandler(
		userRepo, messageRepo, chatRepo,
		tokenServ, messageService, statusService,
		presence, clientREDIS,
	)

	config := &configs.Config{
		BaseHandler:  baseHandler,
		UserRepo:     userRepo,
		TokenService: tokenServ,
	}

	appConfig := internal.AppConfig{
		Config: config,
	}

	e := appConfig.NewRouter()
	appConfig.AddMiddleware(e)
	e.Logger.SetLevel(log.INFO)
	e.Logger.Fatal(e.Start(fmt.Sprintf(":%d", webPort)))
}
