package db

import (
	"context"
	"os"

	"lares/logger"

	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	UserCollection     *mongo.Collection
	AgendaCollection   *mongo.Collection
	BookingsCollection *mongo.Collection
	PropertyCollection *mongo.Collection
	ContactsCollection *mongo.Collection
	Client             *mongo.Client
)

// Initialize MongoDB connection
func init() {
	if err := godotenv.Load(); err != nil {
		logger.Log.Info().Msg("no .env file found; using system environment")
	}

	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		uri = "mongodb://localhost:27017"
	}
	dbName := os.Getenv("MONGO_DB")
	if dbName == "" {
		dbName = "laresdb"
	}

	clientOptions := options.Client().ApplyURI(uri)
	var err error
	Client, err = mongo.Connect(context.TODO(), clientOptions)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("mongo connect failed")
	}

	UserCollection = Client.Database(dbName).Collection("users")
	AgendaCollection = Client.Database(dbName).Collection("agendas")
	BookingsCollection = Client.Database(dbName).Collection("bookings")
	PropertyCollection = Client.Database(dbName).Collection("properties")
	ContactsCollection = Client.Database(dbName).Collection("contacts")
}
