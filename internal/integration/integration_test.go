package integration

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"elsa-proficiency-test/internal/app"
	"elsa-proficiency-test/internal/catalog"
	"elsa-proficiency-test/internal/domain"
	pgloader "elsa-proficiency-test/internal/infra/postgres"
	infraredis "elsa-proficiency-test/internal/infra/redis"
	pgmigrations "elsa-proficiency-test/internal/infra/postgres/migrations"
	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
)

func TestAttemptEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	reference, err := catalog.Reference()
	if err != nil {
		t.Fatalf("reference: %v", err)
	}
	migrateSchema(t, ctx, pgURL)

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	loader := pgloader.NewCatalogLoader(pool)
	if err := loader.SaveCatalog(ctx, reference); err != nil {
		t.Fatalf("seed catalog: %v", err)
	}

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	catalogRepo := infraredis.NewCatalogRepository(redisClient, loader, 5*time.Minute)
	sessionStore := infraredis.NewSessionStore(redisClient, 5*time.Minute)
	service := app.NewTestService(sessionStore, catalogRepo)

	if _, err := service.Open(ctx, "missing", "a0"); !errors.Is(err, domain.ErrCatalogNotFound) {
		t.Fatalf("expected catalog not found, got %v", err)
	}

	if _, err := service.Open(ctx, catalog.ReferenceID, "a1"); err != nil {
		t.Fatalf("open: %v", err)
	}
	dispatch := func(a app.Action) app.View {
		t.Helper()
		v, err := service.Dispatch(ctx, "a1", a)
		if err != nil {
			t.Fatalf("%s: %v", a.Type, err)
		}
		return v
	}

	dispatch(app.Action{Type: app.ActionStart})
	for _, section := range reference.Sections {
		for i, q := range section.Questions {
			i := i
			// answer the last question of every section wrong
			option := q.CorrectAnswer
			if i == len(section.Questions)-1 {
				option = (q.CorrectAnswer + 1) % len(q.Options)
			}
			dispatch(app.Action{Type: app.ActionSelect, Question: &i, Option: option})
			dispatch(app.Action{Type: app.ActionSubmit, Question: &i})
		}
		if section.Prompt != nil {
			switch section.Prompt.Kind {
			case domain.PromptWriting:
				dispatch(app.Action{Type: app.ActionText, Text: strings.Repeat("The meeting moved to Friday. ", 4)})
			case domain.PromptSpeaking:
				dispatch(app.Action{Type: app.ActionRecording, Recording: []byte{0x1, 0x2}})
			}
		}
		dispatch(app.Action{Type: app.ActionComplete})
	}

	report, err := service.Report(ctx, "a1")
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	// every closed section loses its last question: 56 - 4 - 8 - 4 - 4
	if report.TotalScore != 36 || report.Level.Level != "B2" || report.LevelFallback {
		t.Fatalf("expected 36 points at B2, got %d %s fallback=%v", report.TotalScore, report.Level.Level, report.LevelFallback)
	}
	if exists, _ := redisClient.Exists(ctx, "catalog:"+catalog.ReferenceID).Result(); exists != 1 {
		t.Fatalf("expected catalog cached in redis")
	}
	if marker, _ := redisClient.Get(ctx, "attempt:session:a1").Result(); marker != catalog.ReferenceID {
		t.Fatalf("expected liveness marker for a1, got %q", marker)
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "proficiency", "POSTGRES_PASSWORD": "proficiencypass", "POSTGRES_DB": "proficiency"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://proficiency:proficiencypass@%s:%s/proficiency?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func migrateSchema(t *testing.T, ctx context.Context, dsn string) {
	t.Helper()
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
