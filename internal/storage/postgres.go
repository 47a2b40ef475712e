package storage

import (
	"context"
	"database/sql"

	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/LewisWJackson/confirmd-sub001/internal/model"
)

// PostgresStore implements Store on PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore connects and creates tables if they do not exist.
func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "open postgres")
	}
	if err := db.Ping(); err != nil {
		return nil, errors.Wrap(err, "ping postgres")
	}

	s := &PostgresStore{db: db}
	if err := s.initTables(); err != nil {
		return nil, errors.Wrap(err, "init tables")
	}
	return s, nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func (s *PostgresStore) initTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS items (
		id TEXT PRIMARY KEY,
		source_id TEXT NOT NULL,
		title TEXT,
		url TEXT,
		raw_text TEXT NOT NULL,
		item_type TEXT NOT NULL,
		published_at TIMESTAMPTZ,
		ingested_at TIMESTAMPTZ NOT NULL,
		content_hash TEXT NOT NULL UNIQUE
	);
	CREATE TABLE IF NOT EXISTS claims (
		id TEXT PRIMARY KEY,
		item_id TEXT NOT NULL REFERENCES items(id),
		source_id TEXT NOT NULL,
		text TEXT NOT NULL,
		type TEXT NOT NULL,
		assets TEXT[],
		asserted_at TIMESTAMPTZ,
		resolution_type TEXT NOT NULL,
		resolve_by TIMESTAMPTZ,
		falsifiability DOUBLE PRECISION NOT NULL,
		initial_confidence DOUBLE PRECISION NOT NULL,
		status TEXT NOT NULL,
		sub_status TEXT,
		notes TEXT,
		supersedes_id TEXT,
		created_at TIMESTAMPTZ NOT NULL
	);
	CREATE TABLE IF NOT EXISTS evidence (
		id TEXT PRIMARY KEY,
		claim_id TEXT NOT NULL REFERENCES claims(id) ON DELETE CASCADE,
		url TEXT NOT NULL,
		publisher TEXT,
		excerpt TEXT,
		stance TEXT NOT NULL,
		grade TEXT NOT NULL,
		is_primary BOOLEAN NOT NULL,
		retrieved_at TIMESTAMPTZ NOT NULL,
		published_at TIMESTAMPTZ
	);
	CREATE TABLE IF NOT EXISTS verdicts (
		id TEXT PRIMARY KEY,
		seq BIGSERIAL,
		claim_id TEXT NOT NULL REFERENCES claims(id) ON DELETE CASCADE,
		label TEXT NOT NULL,
		probability_true DOUBLE PRECISION NOT NULL,
		evidence_strength DOUBLE PRECISION NOT NULL,
		key_evidence_ids TEXT[],
		reasoning TEXT NOT NULL,
		invalidation_trigger TEXT NOT NULL,
		model_version TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	);
	CREATE TABLE IF NOT EXISTS resolutions (
		id TEXT PRIMARY KEY,
		claim_id TEXT NOT NULL UNIQUE REFERENCES claims(id) ON DELETE CASCADE,
		outcome TEXT NOT NULL,
		resolved_at TIMESTAMPTZ NOT NULL,
		evidence_url TEXT,
		notes TEXT
	);
	CREATE TABLE IF NOT EXISTS sources (
		id TEXT PRIMARY KEY,
		type TEXT NOT NULL,
		handle TEXT NOT NULL,
		display_name TEXT
	);
	CREATE TABLE IF NOT EXISTS source_scores (
		id TEXT PRIMARY KEY,
		source_id TEXT NOT NULL,
		track_record DOUBLE PRECISION NOT NULL,
		method_discipline DOUBLE PRECISION NOT NULL,
		sample_size INTEGER NOT NULL,
		ci_low DOUBLE PRECISION NOT NULL,
		ci_high DOUBLE PRECISION NOT NULL,
		score_version TEXT NOT NULL,
		computed_at TIMESTAMPTZ NOT NULL
	);
	CREATE TABLE IF NOT EXISTS claim_outcomes (
		claim_id TEXT NOT NULL,
		source_id TEXT NOT NULL,
		outcome TEXT NOT NULL,
		accurate BOOLEAN NOT NULL,
		verdict_agreed BOOLEAN NOT NULL,
		had_primary_evidence BOOLEAN NOT NULL,
		resolved_at TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (claim_id, source_id)
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *PostgresStore) SaveItem(ctx context.Context, item model.Item) (model.Item, error) {
	existing, err := s.GetItemByHash(ctx, item.ContentHash)
	if err == nil {
		return existing, ErrDuplicate
	}
	if !errors.Is(err, ErrNotFound) {
		return model.Item{}, err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO items (id, source_id, title, url, raw_text, item_type, published_at, ingested_at, content_hash)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		item.ID, item.SourceID, item.Title, item.URL, item.RawText,
		string(item.ItemType), item.PublishedAt, item.IngestedAt, item.ContentHash)
	if err != nil {
		return model.Item{}, errors.Wrap(err, "save item")
	}
	return item, nil
}

func (s *PostgresStore) GetItem(ctx context.Context, id string) (model.Item, error) {
	return s.scanItem(s.db.QueryRowContext(ctx, `
		SELECT id, source_id, title, url, raw_text, item_type, published_at, ingested_at, content_hash
		FROM items WHERE id = $1`, id))
}

func (s *PostgresStore) GetItemByHash(ctx context.Context, hash string) (model.Item, error) {
	return s.scanItem(s.db.QueryRowContext(ctx, `
		SELECT id, source_id, title, url, raw_text, item_type, published_at, ingested_at, content_hash
		FROM items WHERE content_hash = $1`, hash))
}

func (s *PostgresStore) scanItem(row *sql.Row) (model.Item, error) {
	var item model.Item
	var itemType string
	err := row.Scan(&item.ID, &item.SourceID, &item.Title, &item.URL, &item.RawText,
		&itemType, &item.PublishedAt, &item.IngestedAt, &item.ContentHash)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Item{}, ErrNotFound
	}
	if err != nil {
		return model.Item{}, errors.Wrap(err, "scan item")
	}
	item.ItemType = model.ItemType(itemType)
	return item, nil
}

func (s *PostgresStore) SaveClaim(ctx context.Context, c model.Claim) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO claims (id, item_id, source_id, text, type, assets, asserted_at,
			resolution_type, resolve_by, falsifiability, initial_confidence,
			status, sub_status, notes, supersedes_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		ON CONFLICT (id) DO UPDATE SET
			notes = EXCLUDED.notes,
			sub_status = EXCLUDED.sub_status`,
		c.ID, c.ItemID, c.SourceID, c.Text, string(c.Type), pq.Array(c.Assets),
		c.AssertedAt, string(c.ResolutionType), c.ResolveBy, c.Falsifiability,
		c.InitialConfidence, string(c.Status), string(c.SubStatus), c.Notes,
		c.SupersedesID, c.CreatedAt)
	if isForeignKeyViolation(err) {
		return ErrNotFound
	}
	return errors.Wrap(err, "save claim")
}

func (s *PostgresStore) GetClaim(ctx context.Context, id string) (model.Claim, error) {
	rows, err := s.db.QueryContext(ctx, claimSelect+` WHERE id = $1`, id)
	if err != nil {
		return model.Claim{}, errors.Wrap(err, "get claim")
	}
	defer func() { _ = rows.Close() }()

	claims, err := scanClaims(rows)
	if err != nil {
		return model.Claim{}, err
	}
	if len(claims) == 0 {
		return model.Claim{}, ErrNotFound
	}
	return claims[0], nil
}

func (s *PostgresStore) UpdateClaimStatus(ctx context.Context, id string, status model.ClaimStatus, sub model.ReviewSubStatus) error {
	claim, err := s.GetClaim(ctx, id)
	if err != nil {
		return err
	}
	if regresses(claim.Status, status) {
		return ErrConflict
	}
	_, err = s.db.ExecContext(ctx,
		`UPDATE claims SET status = $1, sub_status = $2 WHERE id = $3`,
		string(status), string(sub), id)
	return errors.Wrap(err, "update claim status")
}

func (s *PostgresStore) ClaimsByItem(ctx context.Context, itemID string) ([]model.Claim, error) {
	rows, err := s.db.QueryContext(ctx, claimSelect+` WHERE item_id = $1 ORDER BY created_at, id`, itemID)
	if err != nil {
		return nil, errors.Wrap(err, "claims by item")
	}
	defer func() { _ = rows.Close() }()
	return scanClaims(rows)
}

func (s *PostgresStore) ClaimsByStatus(ctx context.Context, status model.ClaimStatus) ([]model.Claim, error) {
	rows, err := s.db.QueryContext(ctx, claimSelect+` WHERE status = $1 ORDER BY created_at, id`, string(status))
	if err != nil {
		return nil, errors.Wrap(err, "claims by status")
	}
	defer func() { _ = rows.Close() }()
	return scanClaims(rows)
}

const claimSelect = `
	SELECT id, item_id, source_id, text, type, assets, asserted_at,
		resolution_type, resolve_by, falsifiability, initial_confidence,
		status, COALESCE(sub_status, ''), COALESCE(notes, ''),
		COALESCE(supersedes_id, ''), created_at
	FROM claims`

func scanClaims(rows *sql.Rows) ([]model.Claim, error) {
	var out []model.Claim
	for rows.Next() {
		var c model.Claim
		var typ, resType, status, sub string
		var assets pq.StringArray
		var resolveBy sql.NullTime
		if err := rows.Scan(&c.ID, &c.ItemID, &c.SourceID, &c.Text, &typ, &assets,
			&c.AssertedAt, &resType, &resolveBy, &c.Falsifiability,
			&c.InitialConfidence, &status, &sub, &c.Notes, &c.SupersedesID,
			&c.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "scan claim")
		}
		c.Type = model.ClaimType(typ)
		c.Assets = []string(assets)
		c.ResolutionType = model.ResolutionType(resType)
		c.Status = model.ClaimStatus(status)
		c.SubStatus = model.ReviewSubStatus(sub)
		if resolveBy.Valid {
			t := resolveBy.Time
			c.ResolveBy = &t
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *PostgresStore) DeleteClaim(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM claims WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "delete claim")
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) AppendEvidence(ctx context.Context, items []model.EvidenceItem) error {
	for _, ev := range items {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO evidence (id, claim_id, url, publisher, excerpt, stance, grade, is_primary, retrieved_at, published_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			ev.ID, ev.ClaimID, ev.URL, ev.Publisher, ev.Excerpt,
			string(ev.Stance), string(ev.Grade), ev.Primary, ev.RetrievedAt, ev.PublishedAt)
		if isForeignKeyViolation(err) {
			return ErrNotFound
		}
		if err != nil {
			return errors.Wrap(err, "append evidence")
		}
	}
	return nil
}

func (s *PostgresStore) EvidenceByClaim(ctx context.Context, claimID string) ([]model.EvidenceItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, claim_id, url, COALESCE(publisher, ''), COALESCE(excerpt, ''),
			stance, grade, is_primary, retrieved_at, COALESCE(published_at, retrieved_at)
		FROM evidence WHERE claim_id = $1 ORDER BY retrieved_at, id`, claimID)
	if err != nil {
		return nil, errors.Wrap(err, "evidence by claim")
	}
	defer func() { _ = rows.Close() }()

	var out []model.EvidenceItem
	for rows.Next() {
		var ev model.EvidenceItem
		var stance, grade string
		if err := rows.Scan(&ev.ID, &ev.ClaimID, &ev.URL, &ev.Publisher, &ev.Excerpt,
			&stance, &grade, &ev.Primary, &ev.RetrievedAt, &ev.PublishedAt); err != nil {
			return nil, errors.Wrap(err, "scan evidence")
		}
		ev.Stance = model.Stance(stance)
		ev.Grade = model.Grade(grade)
		out = append(out, ev)
	}
	return out, rows.Err()
}

func (s *PostgresStore) AppendVerdict(ctx context.Context, v model.Verdict) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO verdicts (id, claim_id, label, probability_true, evidence_strength,
			key_evidence_ids, reasoning, invalidation_trigger, model_version, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		v.ID, v.ClaimID, string(v.Label), v.ProbabilityTrue, v.EvidenceStrength,
		pq.Array(v.KeyEvidenceIDs), v.Reasoning, v.InvalidationTrigger,
		v.ModelVersion, v.CreatedAt)
	if isForeignKeyViolation(err) {
		return ErrNotFound
	}
	return errors.Wrap(err, "append verdict")
}

func (s *PostgresStore) VerdictHistory(ctx context.Context, claimID string) ([]model.Verdict, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, claim_id, label, probability_true, evidence_strength,
			key_evidence_ids, reasoning, invalidation_trigger, model_version, created_at
		FROM verdicts WHERE claim_id = $1 ORDER BY seq`, claimID)
	if err != nil {
		return nil, errors.Wrap(err, "verdict history")
	}
	defer func() { _ = rows.Close() }()

	var out []model.Verdict
	for rows.Next() {
		var v model.Verdict
		var label string
		var keyIDs pq.StringArray
		if err := rows.Scan(&v.ID, &v.ClaimID, &label, &v.ProbabilityTrue,
			&v.EvidenceStrength, &keyIDs, &v.Reasoning, &v.InvalidationTrigger,
			&v.ModelVersion, &v.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "scan verdict")
		}
		v.Label = model.VerdictLabel(label)
		v.KeyEvidenceIDs = []string(keyIDs)
		out = append(out, v)
	}
	return out, rows.Err()
}

func (s *PostgresStore) CurrentVerdict(ctx context.Context, claimID string) (model.Verdict, error) {
	history, err := s.VerdictHistory(ctx, claimID)
	if err != nil {
		return model.Verdict{}, err
	}
	if len(history) == 0 {
		return model.Verdict{}, ErrNotFound
	}
	return history[len(history)-1], nil
}

func (s *PostgresStore) SaveResolution(ctx context.Context, r model.Resolution) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO resolutions (id, claim_id, outcome, resolved_at, evidence_url, notes)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		r.ID, r.ClaimID, string(r.Outcome), r.ResolvedAt, r.EvidenceURL, r.Notes)
	if isUniqueViolation(err) {
		return ErrConflict
	}
	if isForeignKeyViolation(err) {
		return ErrNotFound
	}
	return errors.Wrap(err, "save resolution")
}

func (s *PostgresStore) GetResolution(ctx context.Context, claimID string) (model.Resolution, error) {
	var r model.Resolution
	var outcome string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, claim_id, outcome, resolved_at, COALESCE(evidence_url, ''), COALESCE(notes, '')
		FROM resolutions WHERE claim_id = $1`, claimID).
		Scan(&r.ID, &r.ClaimID, &outcome, &r.ResolvedAt, &r.EvidenceURL, &r.Notes)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Resolution{}, ErrNotFound
	}
	if err != nil {
		return model.Resolution{}, errors.Wrap(err, "get resolution")
	}
	r.Outcome = model.ResolutionOutcome(outcome)
	return r, nil
}

func (s *PostgresStore) SaveSource(ctx context.Context, src model.Source) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sources (id, type, handle, display_name)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			handle = EXCLUDED.handle,
			display_name = EXCLUDED.display_name`,
		src.ID, string(src.Type), src.Handle, src.DisplayName)
	return errors.Wrap(err, "save source")
}

func (s *PostgresStore) GetSource(ctx context.Context, id string) (model.Source, error) {
	var src model.Source
	var typ string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, type, handle, COALESCE(display_name, '') FROM sources WHERE id = $1`, id).
		Scan(&src.ID, &typ, &src.Handle, &src.DisplayName)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Source{}, ErrNotFound
	}
	if err != nil {
		return model.Source{}, errors.Wrap(err, "get source")
	}
	src.Type = model.SourceType(typ)
	return src, nil
}

func (s *PostgresStore) ListSources(ctx context.Context) ([]model.Source, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, type, handle, COALESCE(display_name, '') FROM sources ORDER BY id`)
	if err != nil {
		return nil, errors.Wrap(err, "list sources")
	}
	defer func() { _ = rows.Close() }()

	var out []model.Source
	for rows.Next() {
		var src model.Source
		var typ string
		if err := rows.Scan(&src.ID, &typ, &src.Handle, &src.DisplayName); err != nil {
			return nil, errors.Wrap(err, "scan source")
		}
		src.Type = model.SourceType(typ)
		out = append(out, src)
	}
	return out, rows.Err()
}

func (s *PostgresStore) SaveSourceScore(ctx context.Context, score model.SourceScore) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO source_scores (id, source_id, track_record, method_discipline,
			sample_size, ci_low, ci_high, score_version, computed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		score.ID, score.SourceID, score.TrackRecord, score.MethodDiscipline,
		score.SampleSize, score.CILow, score.CIHigh, score.ScoreVersion, score.ComputedAt)
	return errors.Wrap(err, "save source score")
}

func (s *PostgresStore) LatestSourceScore(ctx context.Context, sourceID string) (model.SourceScore, error) {
	var sc model.SourceScore
	err := s.db.QueryRowContext(ctx, `
		SELECT id, source_id, track_record, method_discipline, sample_size,
			ci_low, ci_high, score_version, computed_at
		FROM source_scores WHERE source_id = $1
		ORDER BY computed_at DESC LIMIT 1`, sourceID).
		Scan(&sc.ID, &sc.SourceID, &sc.TrackRecord, &sc.MethodDiscipline,
			&sc.SampleSize, &sc.CILow, &sc.CIHigh, &sc.ScoreVersion, &sc.ComputedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.SourceScore{}, ErrNotFound
	}
	if err != nil {
		return model.SourceScore{}, errors.Wrap(err, "latest source score")
	}
	return sc, nil
}

func (s *PostgresStore) AppendOutcome(ctx context.Context, o model.ClaimOutcome) error {
	// Re-resolving the same claim must not double-count its outcome.
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO claim_outcomes (claim_id, source_id, outcome, accurate,
			verdict_agreed, had_primary_evidence, resolved_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (claim_id, source_id) DO NOTHING`,
		o.ClaimID, o.SourceID, string(o.Outcome), o.Accurate,
		o.VerdictAgreed, o.HadPrimaryEvidence, o.ResolvedAt)
	return errors.Wrap(err, "append outcome")
}

func (s *PostgresStore) OutcomesBySource(ctx context.Context, sourceID string) ([]model.ClaimOutcome, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT claim_id, source_id, outcome, accurate, verdict_agreed, had_primary_evidence, resolved_at
		FROM claim_outcomes WHERE source_id = $1 ORDER BY resolved_at`, sourceID)
	if err != nil {
		return nil, errors.Wrap(err, "outcomes by source")
	}
	defer func() { _ = rows.Close() }()

	var out []model.ClaimOutcome
	for rows.Next() {
		var o model.ClaimOutcome
		var outcome string
		if err := rows.Scan(&o.ClaimID, &o.SourceID, &outcome, &o.Accurate,
			&o.VerdictAgreed, &o.HadPrimaryEvidence, &o.ResolvedAt); err != nil {
			return nil, errors.Wrap(err, "scan outcome")
		}
		o.Outcome = model.ResolutionOutcome(outcome)
		out = append(out, o)
	}
	return out, rows.Err()
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

func isForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23503"
}
