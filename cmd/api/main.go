package main

import (
	"log"
	"time"

	"expnote/internal/config"
	"expnote/internal/domain/model"
	"expnote/internal/handler"
	"expnote/internal/infra/db"
	infraRepo "expnote/internal/infra/repository"
	"expnote/internal/mail"
	"expnote/internal/server"
	"expnote/internal/token"
	"expnote/internal/usecase"
	"expnote/internal/validator"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

type uuidGenerator struct{}

func (g *uuidGenerator) NewID() string {
	return uuid.NewString()
}

type realClock struct{}

func (c *realClock) Now() time.Time {
	return time.Now()
}

func main() {
	//.envが無くても環境変数だけで動く
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	//DB接続
	gormDB, err := db.Connect(cfg.DatabaseDSN())
	if err != nil {
		log.Fatal(err)
	}
	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.RevokedToken{},
	); err != nil {
		log.Fatal(err)
	}

	//Repository（GORM実装）生成
	userRepo := infraRepo.NewUserGormRepository(gormDB)
	revokedRepo := infraRepo.NewRevokedTokenGormRepository(gormDB)
	txm := infraRepo.NewTxManagerGorm(gormDB)

	//usecaseに渡す部品
	idGen := &uuidGenerator{}
	clock := &realClock{}

	//bcrypt（会員登録：Hash / ログイン：Verify）
	hasher := usecase.NewBcryptPasswordHasher(12)
	verifier := usecase.NewBcryptPasswordVerifier()

	//token（access 1h / refresh 30d）と再設定token
	tokens := token.NewService(cfg.JWTSecret, revokedRepo, idGen, clock)
	resetCodec := token.NewResetCodec(cfg.JWTSecret, clock)

	//再設定メール
	mailer := mail.NewMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPFrom)

	//Usecase生成
	authUC := usecase.NewAuthUsecase(
		userRepo,
		revokedRepo,
		txm,
		validator.NewAuthValidator(),
		hasher,
		verifier,
		tokens,
		resetCodec,
		mailer,
		cfg.FrontendURL,
		clock,
	)

	//Handler生成
	authH := handler.NewAuthHandler(authUC)
	userH := handler.NewUserHandler(authUC)

	//Server起動
	e := server.New(cfg, authH, userH, tokens)

	addr := cfg.Port
	if addr[0] != ':' {
		addr = ":" + addr
	}

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
