package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"docverify-portal/internal/audit"
	auditrepo "docverify-portal/internal/audit/repository"
	"docverify-portal/internal/config"
	"docverify-portal/internal/devotp"
	"docverify-portal/internal/document/seed"
	healthhandler "docverify-portal/internal/health/handler"
	"docverify-portal/internal/policy/engine"
	"docverify-portal/internal/portal"
	"docverify-portal/internal/security"
	"docverify-portal/internal/server"
	"docverify-portal/internal/server/middleware"
	"docverify-portal/internal/session"
	"docverify-portal/internal/telemetry"
	telemetryotel "docverify-portal/internal/telemetry/otel"
	"docverify-portal/internal/validation"
	"docverify-portal/internal/verification"
	"docverify-portal/internal/verification/sms"
)

const healthInterval = 15 * time.Second

func main() {
	cfg, err := config.LoadArgs(os.Args[1:])
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	providers, err := telemetryotel.NewProviders(ctx, telemetryotel.Options{
		Endpoint:    cfg.OTLPEndpoint,
		ServiceName: cfg.ServiceName,
		Environment: cfg.Env,
		Insecure:    cfg.OTLPInsecure,
	})
	if err != nil {
		log.Fatalf("otel: %v", err)
	}
	providers.SetGlobal()
	metrics, err := telemetryotel.NewRequestMetrics(providers.MeterProvider)
	if err != nil {
		log.Fatalf("otel metrics: %v", err)
	}
	emitter := telemetryotel.NewEventEmitter(providers.LoggerProvider)

	docs, err := seed.Load(cfg.SeedFile)
	if err != nil {
		log.Fatalf("seed: %v", err)
	}
	store := session.New(docs,
		session.WithHasher(security.NewHasher(cfg.BcryptCost)),
		session.WithClearDocumentsOnLogout(cfg.ClearDocumentsOnLogout),
	)

	priv, pub, err := security.LoadSigningKeys(cfg.SessionTokenPrivateKey, cfg.SessionTokenPublicKey)
	if err != nil {
		log.Fatalf("session token keys: %v", err)
	}
	tokens := security.NewTokenProvider(priv, pub, cfg.SessionTokenIssuer, cfg.TokenTTL())

	opts := []portal.Option{
		portal.WithTokens(tokens),
		portal.WithCooldown(verification.NewCooldown(cfg.ResendCooldownDuration())),
		portal.WithUploadDelay(cfg.UploadDelayDuration()),
		portal.WithEmitter(emitter),
	}
	fp := validation.DefaultFilePolicy()
	fp.MaxBytes = cfg.MaxUploadBytes
	opts = append(opts, portal.WithFilePolicy(fp))

	if cfg.VerificationMode == config.VerificationOTP {
		var phone verification.Sender = verification.LogSender{Channel: verification.ChannelPhone}
		if cfg.SMSLocalAPIKey != "" {
			phone = sms.NewSMSLocalClient(cfg.SMSLocalAPIKey, cfg.SMSLocalBaseURL, cfg.SMSLocalSender)
		}
		otpOpts := []verification.OTPOption{
			verification.WithSender(verification.ChannelEmail, verification.LogSender{Channel: verification.ChannelEmail}),
			verification.WithSender(verification.ChannelPhone, phone),
		}
		if cfg.DevEndpoints() {
			codes := devotp.NewMemoryStore()
			otpOpts = append(otpOpts, verification.WithRecorder(codes))
			opts = append(opts, portal.WithDevCodes(codes))
			log.Println("verification: dev OTP mode, codes readable at /dev/verification/{channel}")
		}
		opts = append(opts, portal.WithChecker(verification.NewOTPChecker(cfg.OTPTTLDuration(), otpOpts...)))
	}

	var policy string
	if cfg.RoutePolicyFile != "" {
		b, err := os.ReadFile(cfg.RoutePolicyFile)
		if err != nil {
			log.Fatalf("route policy: %v", err)
		}
		policy = string(b)
	}
	guard, err := engine.NewOPAGuard(ctx, policy)
	if err != nil {
		log.Fatalf("route policy: %v", err)
	}

	auditRepo := auditrepo.NewMemory(cfg.AuditCapacity)
	auditLogger := audit.NewLogger(auditRepo, middleware.ClientIPFromContext, middleware.SessionIDFromContext)
	opts = append(opts, portal.WithAuditLogger(auditLogger))

	svc := portal.NewService(store, opts...)

	httpSrv := &http.Server{
		Addr: cfg.HTTPAddr,
		Handler: server.NewHTTPHandler(server.HTTPDeps{
			Portal:       svc,
			Tokens:       tokens,
			Guard:        guard,
			Audit:        auditLogger,
			AuditRepo:    auditRepo,
			Metrics:      metrics,
			Emitter:      emitter,
			DevEndpoints: cfg.DevEndpoints(),
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	health := healthhandler.NewServer(guard)
	go health.Run(ctx, healthInterval)

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		log.Fatalf("listen: %v", err)
	}
	defer lis.Close()
	grpcSrv := server.NewGRPCServer(server.Deps{Health: health})

	go func() {
		log.Printf("gRPC health server listening on %s", cfg.GRPCAddr)
		if err := grpcSrv.Serve(lis); err != nil {
			log.Fatalf("serve grpc: %v", err)
		}
	}()
	go func() {
		log.Printf("HTTP API listening on %s", cfg.HTTPAddr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("serve http: %v", err)
		}
	}()

	<-ctx.Done()

	log.Println("shutting down servers...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Printf("http shutdown: %v", err)
	}
	grpcSrv.GracefulStop()

	time.Sleep(telemetry.ShutdownDrainDuration)
	if err := providers.Shutdown(shutdownCtx); err != nil {
		log.Printf("otel shutdown: %v", err)
	}
	log.Println("servers stopped")
}
