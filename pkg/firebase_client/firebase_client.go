package firebaseClient

import (
	"log"
	"os"
	"path/filepath"

	firebase "firebase.google.com/go"
	"firebase.google.com/go/messaging"
	"golang.org/x/net/context"
	"google.golang.org/api/option"
)

// SetupFirebase initializes the Firebase admin SDK with the given service
// account key and returns a context and a messaging client. A nil client means
// push notifications run in degraded mode.
func SetupFirebase() (context.Context, *messaging.Client, error) {
	ctx := context.Background()
	serviceAccountKeyFilePath, err := filepath.Abs(os.Getenv("FIREBASE_KEY_PATH"))
	if err != nil {
		log.Printf("Unable to load serviceAccountKeys.json file: %v", err)
		return ctx, nil, err
	}
	opt := option.WithCredentialsFile(serviceAccountKeyFilePath)

	app, err := firebase.NewApp(ctx, nil, opt)
	if err != nil {
		log.Printf("Error initializing Firebase app: %v", err)
		return ctx, nil, err
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		log.Printf("Error initializing Firebase messaging client: %v", err)
		return ctx, nil, err
	}

	return ctx, client, nil
}
