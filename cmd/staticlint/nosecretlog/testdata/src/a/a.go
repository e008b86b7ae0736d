package a

import (
	"log"

	"go.uber.org/zap"

	"logger"
)

type credentials struct {
	Email        string
	PasswordHash string
}

func handle(email, password, token string, signingKey []byte, creds credentials, attempts int) {
	logger.Log.Infow("signin", "email", email)
	logger.Log.Infow("signin", "password", password) // want "password must not be logged"
	logger.Log.Errorln("bad token", token)           // want "token must not be logged"
	logger.Log.Infow("user", "hash", creds.PasswordHash) // want "PasswordHash must not be logged"

	log.Printf("key %s", string(signingKey)) // want "signingKey must not be logged"
	log.Println("attempts", attempts)

	_ = zap.String("token", token) // want "token must not be logged"
	_ = zap.Int("attempts", attempts)
	_ = zap.String("email", creds.Email)
}
