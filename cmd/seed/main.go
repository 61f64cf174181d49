// Seeds the catalog with a few famous artworks so a fresh deployment can be
// smoke-tested: open one of the images on a laptop, scan it with the app,
// and it should match immediately.
package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/bryanwahyu/artscan/internal/config"
	"github.com/bryanwahyu/artscan/internal/domain/artworks"
	mysqlp "github.com/bryanwahyu/artscan/internal/infra/db/mysql"
	pgp "github.com/bryanwahyu/artscan/internal/infra/db/postgres"
	"github.com/bryanwahyu/artscan/internal/infra/vision/clip"
)

type seedArtwork struct {
	Title       string
	Artist      string
	ImageURL    string
	Description string
	Year        int
	Style       string
}

var famousArtworks = []seedArtwork{
	{
		Title:       "The Starry Night",
		Artist:      "Vincent van Gogh",
		ImageURL:    "https://upload.wikimedia.org/wikipedia/commons/thumb/e/ea/Van_Gogh_-_Starry_Night_-_Google_Art_Project.jpg/1280px-Van_Gogh_-_Starry_Night_-_Google_Art_Project.jpg",
		Description: "A famous post-impressionist painting depicting a swirling night sky over a village.",
		Year:        1889,
		Style:       "Post-Impressionism",
	},
	{
		Title:       "Mona Lisa",
		Artist:      "Leonardo da Vinci",
		ImageURL:    "https://upload.wikimedia.org/wikipedia/commons/thumb/e/ec/Mona_Lisa%2C_by_Leonardo_da_Vinci%2C_from_C2RMF_retouched.jpg/1200px-Mona_Lisa%2C_by_Leonardo_da_Vinci%2C_from_C2RMF_retouched.jpg",
		Description: "The world's most famous portrait, known for the subject's enigmatic smile.",
		Year:        1503,
		Style:       "Renaissance",
	},
	{
		Title:       "The Scream",
		Artist:      "Edvard Munch",
		ImageURL:    "https://upload.wikimedia.org/wikipedia/commons/thumb/c/c5/Edvard_Munch%2C_1893%2C_The_Scream%2C_oil%2C_tempera_and_pastel_on_cardboard%2C_91_x_73_cm%2C_National_Gallery_of_Norway.jpg/1200px-Edvard_Munch%2C_1893%2C_The_Scream%2C_oil%2C_tempera_and_pastel_on_cardboard%2C_91_x_73_cm%2C_National_Gallery_of_Norway.jpg",
		Description: "An iconic expressionist painting depicting a figure in distress against a dramatic sky.",
		Year:        1893,
		Style:       "Expressionism",
	},
}

func main() {
	log := zerolog.New(os.Stdout).With().Timestamp().Str("service", "artscan-seed").Logger()

	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatal().Err(err).Msg("config load error")
	}

	ctx := context.Background()

	var repo artworks.Repository
	switch cfg.Database.Driver {
	case "mysql":
		db, err := mysqlp.Connect(ctx, cfg.MySQLDSN())
		if err != nil {
			log.Fatal().Err(err).Msg("mysql connect error")
		}
		defer db.Close()
		repo = mysqlp.NewArtworkRepository(db)
	default:
		db, err := pgp.Connect(ctx, cfg.PostgresDSN())
		if err != nil {
			log.Fatal().Err(err).Msg("postgres connect error")
		}
		defer db.Close()
		repo = pgp.NewArtworkRepository(db)
	}

	embedder := clip.New(cfg.Embedding.Endpoint, cfg.Embedding.Dimension,
		time.Duration(cfg.Embedding.TimeoutMS)*time.Millisecond)

	seeded := 0
	for _, s := range famousArtworks {
		if err := seedOne(ctx, repo, embedder, s); err != nil {
			log.Error().Err(err).Str("title", s.Title).Msg("seeding failed")
			continue
		}
		log.Info().Str("title", s.Title).Str("artist", s.Artist).Msg("seeded")
		seeded++
	}
	log.Info().Int("seeded", seeded).Int("total", len(famousArtworks)).Msg("seeding complete")
	if seeded != len(famousArtworks) {
		os.Exit(1)
	}
}

func seedOne(ctx context.Context, repo artworks.Repository, embedder *clip.Client, s seedArtwork) error {
	data, err := download(ctx, s.ImageURL)
	if err != nil {
		return err
	}
	emb, err := embedder.Embed(ctx, data)
	if err != nil {
		return fmt.Errorf("generating embedding: %w", err)
	}

	conf := 1.0
	a := &artworks.Artwork{
		ID:     artworks.ArtworkID(uuid.New().String()),
		Title:  s.Title,
		Artist: s.Artist,
		Description: map[string]any{
			"description":  s.Description,
			"year":         s.Year,
			"style":        s.Style,
			"ai_generated": false,
		},
		ImageURL:   s.ImageURL,
		Embedding:  emb,
		IsVerified: true, // manually curated
		Source:     artworks.SourceAdmin,
		Confidence: &conf,
		CreatedAt:  time.Now(),
	}
	if err := a.Validate(len(emb)); err != nil {
		return err
	}
	return repo.Create(ctx, a)
}

func download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	cli := &http.Client{Timeout: 30 * time.Second}
	resp, err := cli.Do(req)
	if err != nil {
		return nil, fmt.Errorf("downloading %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("downloading %s: status %d", url, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
