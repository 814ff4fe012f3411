package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Togather-Foundation/gala/internal/domain/gala"
	"github.com/Togather-Foundation/gala/internal/metrics"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
)

var _ gala.Repository = (*GalaRepository)(nil)

var tracer = otel.Tracer("github.com/Togather-Foundation/gala/internal/storage/postgres")

// tables maps record kinds to their tables. Only these names are ever
// interpolated into SQL.
var tables = map[gala.Kind]string{
	gala.KindGala:     "galas",
	gala.KindCategory: "categories",
	gala.KindNominee:  "nominees",
	gala.KindPanel:    "panels",
	gala.KindSpeaker:  "speakers",
	gala.KindSponsor:  "sponsors",
	gala.KindGallery:  "gallery_images",
}

type GalaRepository struct {
	pool *pgxpool.Pool
	tx   pgx.Tx
}

func (r *GalaRepository) queryer() queryer {
	return pick(r.pool, r.tx)
}

func (r *GalaRepository) ActiveGalaID(ctx context.Context) (string, error) {
	start := time.Now()
	var id string
	err := r.queryer().QueryRow(ctx, `SELECT id FROM galas WHERE is_active LIMIT 1`).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		metrics.RecordQuery("active_gala", start, nil)
		return "", gala.ErrNoActiveGala
	}
	metrics.RecordQuery("active_gala", start, err)
	if err != nil {
		return "", fmt.Errorf("active gala: %w", err)
	}
	return id, nil
}

// LoadSnapshot reads every collection of a gala. Outside a transaction the
// collections load in parallel on separate pool connections.
func (r *GalaRepository) LoadSnapshot(ctx context.Context, galaID string) (*gala.Snapshot, error) {
	ctx, span := tracer.Start(ctx, "postgres.LoadSnapshot")
	defer span.End()
	span.SetAttributes(attribute.String("gala.id", galaID))

	start := time.Now()
	snap, err := r.loadSnapshot(ctx, galaID)
	if errors.Is(err, gala.ErrNotFound) {
		metrics.RecordQuery("load_snapshot", start, nil)
		return nil, err
	}
	metrics.RecordQuery("load_snapshot", start, err)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("load snapshot %s: %w", galaID, err)
	}
	return snap, nil
}

func (r *GalaRepository) loadSnapshot(ctx context.Context, galaID string) (*gala.Snapshot, error) {
	q := r.queryer()

	snap := &gala.Snapshot{}
	row := q.QueryRow(ctx, `
SELECT id, name, year, theme, venue, city, starts_at, is_active
  FROM galas
 WHERE id = $1`, galaID)
	g, err := scanGala(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, gala.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	snap.Gala = g

	group, gctx := errgroup.WithContext(ctx)
	if r.tx != nil {
		// A transaction is a single connection.
		group.SetLimit(1)
	}
	group.Go(func() (err error) {
		snap.Galas, err = r.listGalas(gctx, q)
		return err
	})
	group.Go(func() (err error) {
		snap.Categories, err = r.listCategories(gctx, q, galaID)
		return err
	})
	group.Go(func() (err error) {
		snap.Panels, err = r.listPanels(gctx, q, galaID)
		return err
	})
	group.Go(func() (err error) {
		snap.Sponsors, err = r.listSponsors(gctx, q, galaID)
		return err
	})
	group.Go(func() (err error) {
		snap.Gallery, err = r.listGallery(gctx, q, galaID)
		return err
	})
	if err := group.Wait(); err != nil {
		return nil, err
	}

	snap.LoadedAt = time.Now().UTC()
	return snap, nil
}

func scanGala(row pgx.Row) (gala.Gala, error) {
	var (
		g        gala.Gala
		startsAt pgtype.Timestamptz
	)
	if err := row.Scan(&g.ID, &g.Name, &g.Year, &g.Theme, &g.Venue, &g.City, &startsAt, &g.IsActive); err != nil {
		return gala.Gala{}, err
	}
	g.StartsAt = timePtr(startsAt)
	return g, nil
}

func timePtr(ts pgtype.Timestamptz) *time.Time {
	if !ts.Valid {
		return nil
	}
	t := ts.Time.UTC()
	return &t
}

func (r *GalaRepository) listGalas(ctx context.Context, q queryer) ([]gala.Gala, error) {
	rows, err := q.Query(ctx, `
SELECT id, name, year, theme, venue, city, starts_at, is_active
  FROM galas
 ORDER BY year DESC, created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("list galas: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (gala.Gala, error) {
		return scanGala(row)
	})
}

func (r *GalaRepository) listCategories(ctx context.Context, q queryer, galaID string) ([]gala.Category, error) {
	rows, err := q.Query(ctx, `
SELECT id, gala_id, name, description, position
  FROM categories
 WHERE gala_id = $1
 ORDER BY position, id`, galaID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	categories, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (gala.Category, error) {
		var c gala.Category
		err := row.Scan(&c.ID, &c.GalaID, &c.Name, &c.Description, &c.Position)
		c.Nominees = []gala.Nominee{}
		return c, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan categories: %w", err)
	}

	rows, err = q.Query(ctx, `
SELECT n.id, n.category_id, n.name, n.type, n.location, n.description,
       n.website, n.image_url, n.is_winner, n.position
  FROM nominees n
  JOIN categories c ON c.id = n.category_id
 WHERE c.gala_id = $1
 ORDER BY n.position, n.id`, galaID)
	if err != nil {
		return nil, fmt.Errorf("list nominees: %w", err)
	}
	nominees, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (gala.Nominee, error) {
		var n gala.Nominee
		err := row.Scan(&n.ID, &n.CategoryID, &n.Name, &n.Type, &n.Location, &n.Description,
			&n.Website, &n.ImageURL, &n.IsWinner, &n.Position)
		return n, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan nominees: %w", err)
	}

	index := make(map[string]int, len(categories))
	for i, c := range categories {
		index[c.ID] = i
	}
	for _, n := range nominees {
		if i, ok := index[n.CategoryID]; ok {
			categories[i].Nominees = append(categories[i].Nominees, n)
		}
	}
	return categories, nil
}

func (r *GalaRepository) listPanels(ctx context.Context, q queryer, galaID string) ([]gala.Panel, error) {
	rows, err := q.Query(ctx, `
SELECT id, gala_id, title, theme, moderator, starts_at, position
  FROM panels
 WHERE gala_id = $1
 ORDER BY position, id`, galaID)
	if err != nil {
		return nil, fmt.Errorf("list panels: %w", err)
	}
	panels, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (gala.Panel, error) {
		var (
			p        gala.Panel
			startsAt pgtype.Timestamptz
		)
		err := row.Scan(&p.ID, &p.GalaID, &p.Title, &p.Theme, &p.Moderator, &startsAt, &p.Position)
		p.StartsAt = timePtr(startsAt)
		p.Speakers = []gala.Speaker{}
		return p, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan panels: %w", err)
	}

	rows, err = q.Query(ctx, `
SELECT s.id, s.panel_id, s.name, s.affiliation, s.bio, s.position
  FROM speakers s
  JOIN panels p ON p.id = s.panel_id
 WHERE p.gala_id = $1
 ORDER BY s.position, s.id`, galaID)
	if err != nil {
		return nil, fmt.Errorf("list speakers: %w", err)
	}
	speakers, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (gala.Speaker, error) {
		var s gala.Speaker
		err := row.Scan(&s.ID, &s.PanelID, &s.Name, &s.Affiliation, &s.Bio, &s.Position)
		return s, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan speakers: %w", err)
	}

	index := make(map[string]int, len(panels))
	for i, p := range panels {
		index[p.ID] = i
	}
	for _, s := range speakers {
		if i, ok := index[s.PanelID]; ok {
			panels[i].Speakers = append(panels[i].Speakers, s)
		}
	}
	return panels, nil
}

func (r *GalaRepository) listSponsors(ctx context.Context, q queryer, galaID string) ([]gala.Sponsor, error) {
	rows, err := q.Query(ctx, `
SELECT id, gala_id, name, tier, website, logo_url, position
  FROM sponsors
 WHERE gala_id = $1
 ORDER BY position, id`, galaID)
	if err != nil {
		return nil, fmt.Errorf("list sponsors: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (gala.Sponsor, error) {
		var s gala.Sponsor
		err := row.Scan(&s.ID, &s.GalaID, &s.Name, &s.Tier, &s.Website, &s.LogoURL, &s.Position)
		return s, err
	})
}

func (r *GalaRepository) listGallery(ctx context.Context, q queryer, galaID string) ([]gala.GalleryImage, error) {
	rows, err := q.Query(ctx, `
SELECT id, gala_id, url, caption, album, position
  FROM gallery_images
 WHERE gala_id = $1
 ORDER BY position, id`, galaID)
	if err != nil {
		return nil, fmt.Errorf("list gallery: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (gala.GalleryImage, error) {
		var g gala.GalleryImage
		err := row.Scan(&g.ID, &g.GalaID, &g.URL, &g.Caption, &g.Album, &g.Position)
		return g, err
	})
}

// Save upserts rec by id.
func (r *GalaRepository) Save(ctx context.Context, rec gala.Record) error {
	start := time.Now()
	op := "save_" + string(rec.RecordKind())
	err := r.save(ctx, rec)
	metrics.RecordQuery(op, start, err)
	return err
}

func (r *GalaRepository) save(ctx context.Context, rec gala.Record) error {
	q := r.queryer()
	var err error
	switch v := rec.(type) {
	case *gala.Gala:
		return inTx(ctx, r.pool, r.tx, func(tx pgx.Tx) error {
			if v.IsActive {
				if _, err := tx.Exec(ctx, `UPDATE galas SET is_active = FALSE, updated_at = now() WHERE is_active AND id <> $1`, v.ID); err != nil {
					return fmt.Errorf("deactivate galas: %w", err)
				}
			}
			_, err := tx.Exec(ctx, `
INSERT INTO galas (id, name, year, theme, venue, city, starts_at, is_active)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (id) DO UPDATE
   SET name = EXCLUDED.name, year = EXCLUDED.year, theme = EXCLUDED.theme,
       venue = EXCLUDED.venue, city = EXCLUDED.city, starts_at = EXCLUDED.starts_at,
       is_active = EXCLUDED.is_active, updated_at = now()`,
				v.ID, v.Name, v.Year, v.Theme, v.Venue, v.City, v.StartsAt, v.IsActive)
			return err
		})
	case *gala.Category:
		_, err = q.Exec(ctx, `
INSERT INTO categories (id, gala_id, name, description, position)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (id) DO UPDATE
   SET name = EXCLUDED.name, description = EXCLUDED.description,
       position = EXCLUDED.position, updated_at = now()`,
			v.ID, v.GalaID, v.Name, v.Description, v.Position)
	case *gala.Nominee:
		_, err = q.Exec(ctx, `
INSERT INTO nominees (id, category_id, name, type, location, description, website, image_url, is_winner, position)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
ON CONFLICT (id) DO UPDATE
   SET category_id = EXCLUDED.category_id, name = EXCLUDED.name, type = EXCLUDED.type,
       location = EXCLUDED.location, description = EXCLUDED.description,
       website = EXCLUDED.website, image_url = EXCLUDED.image_url,
       is_winner = EXCLUDED.is_winner, position = EXCLUDED.position, updated_at = now()`,
			v.ID, v.CategoryID, v.Name, v.Type, v.Location, v.Description, v.Website, v.ImageURL, v.IsWinner, v.Position)
	case *gala.Panel:
		_, err = q.Exec(ctx, `
INSERT INTO panels (id, gala_id, title, theme, moderator, starts_at, position)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (id) DO UPDATE
   SET title = EXCLUDED.title, theme = EXCLUDED.theme, moderator = EXCLUDED.moderator,
       starts_at = EXCLUDED.starts_at, position = EXCLUDED.position, updated_at = now()`,
			v.ID, v.GalaID, v.Title, v.Theme, v.Moderator, v.StartsAt, v.Position)
	case *gala.Speaker:
		_, err = q.Exec(ctx, `
INSERT INTO speakers (id, panel_id, name, affiliation, bio, position)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (id) DO UPDATE
   SET panel_id = EXCLUDED.panel_id, name = EXCLUDED.name, affiliation = EXCLUDED.affiliation,
       bio = EXCLUDED.bio, position = EXCLUDED.position, updated_at = now()`,
			v.ID, v.PanelID, v.Name, v.Affiliation, v.Bio, v.Position)
	case *gala.Sponsor:
		_, err = q.Exec(ctx, `
INSERT INTO sponsors (id, gala_id, name, tier, website, logo_url, position)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (id) DO UPDATE
   SET name = EXCLUDED.name, tier = EXCLUDED.tier, website = EXCLUDED.website,
       logo_url = EXCLUDED.logo_url, position = EXCLUDED.position, updated_at = now()`,
			v.ID, v.GalaID, v.Name, v.Tier, v.Website, v.LogoURL, v.Position)
	case *gala.GalleryImage:
		_, err = q.Exec(ctx, `
INSERT INTO gallery_images (id, gala_id, url, caption, album, position)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (id) DO UPDATE
   SET url = EXCLUDED.url, caption = EXCLUDED.caption, album = EXCLUDED.album,
       position = EXCLUDED.position, updated_at = now()`,
			v.ID, v.GalaID, v.URL, v.Caption, v.Album, v.Position)
	default:
		return fmt.Errorf("unsupported record type %T", rec)
	}
	return err
}

// Delete removes one record. Nested records go with it by cascade.
func (r *GalaRepository) Delete(ctx context.Context, kind gala.Kind, id string) error {
	table, ok := tables[kind]
	if !ok {
		return fmt.Errorf("unsupported record kind %q", kind)
	}

	start := time.Now()
	tag, err := r.queryer().Exec(ctx, `DELETE FROM `+table+` WHERE id = $1`, id)
	metrics.RecordQuery("delete_"+string(kind), start, err)
	if err != nil {
		return fmt.Errorf("delete %s: %w", kind, err)
	}
	if tag.RowsAffected() == 0 {
		return gala.ErrNotFound
	}
	return nil
}
