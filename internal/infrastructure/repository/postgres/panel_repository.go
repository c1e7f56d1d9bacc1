package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/hansung-sw-capstone-2025-2/2025-8-A-AI/internal/core/domain"
)

// PanelRepository is the record-store side of the hybrid query executor: it
// renders compiled predicate sets into parameterized SQL, optionally ordered
// by pgvector distance.
type PanelRepository struct {
	db *sql.DB
}

func NewPanelRepository(db *sql.DB) *PanelRepository {
	return &PanelRepository{db: db}
}

// arrayColumns are the list-valued survey columns; non-empty means != '{}'.
var arrayColumns = map[string]struct{}{
	"smoking_experience": {}, "drinking_experience": {}, "electronic_devices": {},
	"cigarette_brands": {}, "e_cigarette": {},
}

var documentColumns = map[string]struct{}{
	"survey_health": {}, "survey_consumption": {}, "survey_lifestyle": {},
	"survey_digital": {}, "survey_environment": {},
}

var scalarColumns = map[string]struct{}{
	"age": {}, "age_group": {}, "gender": {}, "residence": {}, "occupation": {},
	"marital_status": {}, "phone_brand": {}, "car_brand": {},
}

func knownColumn(field string) bool {
	if _, ok := scalarColumns[field]; ok {
		return true
	}
	if _, ok := arrayColumns[field]; ok {
		return true
	}
	_, ok := documentColumns[field]
	return ok
}

const panelColumns = `id AS panel_id, age, gender, residence, occupation, marital_status,
	phone_brand, car_brand, profile_summary,
	to_jsonb(hash_tags) AS hashtags,
	to_jsonb(electronic_devices) AS electronic_devices,
	to_jsonb(smoking_experience) AS smoking_experience,
	to_jsonb(cigarette_brands) AS cigarette_brands,
	to_jsonb(e_cigarette) AS e_cigarette,
	to_jsonb(drinking_experience) AS drinking_experience,
	survey_health, survey_consumption, survey_lifestyle, survey_digital, survey_environment`

func (r *PanelRepository) EnsureSchema(ctx context.Context, embeddingDim int) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2025110801)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	query := fmt.Sprintf(`
CREATE EXTENSION IF NOT EXISTS vector;

CREATE TABLE IF NOT EXISTS panel (
	id TEXT PRIMARY KEY,
	age INTEGER,
	age_group TEXT,
	gender TEXT,
	residence TEXT,
	occupation TEXT,
	marital_status TEXT,
	phone_brand TEXT,
	car_brand TEXT,
	profile_summary TEXT,
	hash_tags TEXT[],
	electronic_devices TEXT[],
	smoking_experience TEXT[],
	cigarette_brands TEXT[],
	e_cigarette TEXT[],
	drinking_experience TEXT[],
	survey_health JSONB,
	survey_consumption JSONB,
	survey_lifestyle JSONB,
	survey_digital JSONB,
	survey_environment JSONB,
	embedding vector(%d)
);

CREATE INDEX IF NOT EXISTS idx_panel_gender ON panel(gender);
CREATE INDEX IF NOT EXISTS idx_panel_age_group ON panel(age_group);
`, embeddingDim)

	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (r *PanelRepository) Search(
	ctx context.Context,
	preds []domain.Predicate,
	queryVector []float32,
	limit int,
) ([]domain.Panel, error) {
	b := &queryBuilder{}

	vectorPH := ""
	if len(queryVector) > 0 {
		vectorPH = b.bind(vectorLiteral(queryVector))
	}

	where, err := b.renderAll(preds)
	if err != nil {
		return nil, err
	}

	var query string
	if vectorPH != "" {
		limitPH := b.bind(limit)
		query = fmt.Sprintf(`
SELECT %s,
	CASE WHEN embedding IS NOT NULL THEN 1 - (embedding <=> %s::vector) ELSE NULL END AS similarity
FROM panel
WHERE %s
ORDER BY CASE WHEN embedding IS NOT NULL THEN embedding <=> %s::vector ELSE 999 END
LIMIT %s`, panelColumns, vectorPH, where, vectorPH, limitPH)
	} else {
		limitPH := b.bind(limit)
		query = fmt.Sprintf(`
SELECT %s,
	NULL::double precision AS similarity
FROM panel
WHERE %s
LIMIT %s`, panelColumns, where, limitPH)
	}

	return r.queryPanels(ctx, query, b.params)
}

func (r *PanelRepository) SearchWithinIDs(
	ctx context.Context,
	panelIDs []string,
	preds []domain.Predicate,
	queryVector []float32,
) ([]domain.Panel, error) {
	if len(panelIDs) == 0 {
		return nil, nil
	}

	b := &queryBuilder{}

	vectorPH := ""
	if len(queryVector) > 0 {
		vectorPH = b.bind(vectorLiteral(queryVector))
	}

	idsJSON, err := json.Marshal(panelIDs)
	if err != nil {
		return nil, fmt.Errorf("marshal panel ids: %w", err)
	}
	b.clauses = append(b.clauses,
		fmt.Sprintf("id IN (SELECT jsonb_array_elements_text(%s::jsonb))", b.bind(idsJSON)))

	where, err := b.renderAll(preds)
	if err != nil {
		return nil, err
	}

	var query string
	if vectorPH != "" {
		query = fmt.Sprintf(`
SELECT %s,
	CASE WHEN embedding IS NOT NULL THEN 1 - (embedding <=> %s::vector) ELSE NULL END AS similarity
FROM panel
WHERE %s
ORDER BY CASE WHEN embedding IS NOT NULL THEN embedding <=> %s::vector ELSE 999 END`,
			panelColumns, vectorPH, where, vectorPH)
	} else {
		query = fmt.Sprintf(`
SELECT %s,
	NULL::double precision AS similarity
FROM panel
WHERE %s`, panelColumns, where)
	}

	return r.queryPanels(ctx, query, b.params)
}

func (r *PanelRepository) GetByIDs(ctx context.Context, panelIDs []string) ([]domain.Panel, error) {
	if len(panelIDs) == 0 {
		return nil, nil
	}
	idsJSON, err := json.Marshal(panelIDs)
	if err != nil {
		return nil, fmt.Errorf("marshal panel ids: %w", err)
	}

	query := fmt.Sprintf(`
SELECT %s,
	NULL::double precision AS similarity
FROM panel
WHERE id IN (SELECT jsonb_array_elements_text($1::jsonb))`, panelColumns)

	return r.queryPanels(ctx, query, []any{idsJSON})
}

func (r *PanelRepository) queryPanels(ctx context.Context, query string, params []any) ([]domain.Panel, error) {
	rows, err := r.db.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, fmt.Errorf("query panels: %w", err)
	}
	defer rows.Close()

	var panels []domain.Panel
	for rows.Next() {
		panel, err := scanPanel(rows)
		if err != nil {
			return nil, err
		}
		panels = append(panels, panel)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate panels: %w", err)
	}
	return panels, nil
}

// queryBuilder accumulates WHERE clauses and their bound parameters,
// numbering placeholders as they are bound.
type queryBuilder struct {
	clauses []string
	params  []any
}

func (b *queryBuilder) bind(value any) string {
	b.params = append(b.params, value)
	return "$" + strconv.Itoa(len(b.params))
}

func (b *queryBuilder) renderAll(preds []domain.Predicate) (string, error) {
	for _, pred := range preds {
		if err := b.render(pred); err != nil {
			return "", err
		}
	}
	if len(b.clauses) == 0 {
		return "1=1", nil
	}
	return strings.Join(b.clauses, " AND "), nil
}

func (b *queryBuilder) render(p domain.Predicate) error {
	if !knownColumn(p.Field) {
		return fmt.Errorf("render predicate: unknown column %q", p.Field)
	}

	switch p.Op {
	case domain.OpEquals:
		if len(p.Args) == 0 {
			return nil
		}
		b.clauses = append(b.clauses, fmt.Sprintf("%s = %s", p.Field, b.bind(p.Args[0])))

	case domain.OpIn:
		if len(p.Args) == 0 {
			return nil
		}
		placeholders := make([]string, len(p.Args))
		for i, arg := range p.Args {
			placeholders[i] = b.bind(arg)
		}
		b.clauses = append(b.clauses,
			fmt.Sprintf("%s = ANY(ARRAY[%s])", p.Field, strings.Join(placeholders, ", ")))

	case domain.OpLikeAny:
		if len(p.Args) == 0 {
			return nil
		}
		likes := make([]string, len(p.Args))
		for i, arg := range p.Args {
			likes[i] = fmt.Sprintf("%s LIKE %s", p.Field, b.bind(likePattern(arg)))
		}
		b.clauses = append(b.clauses, grouped(likes, " OR "))

	case domain.OpJSONLike:
		if len(p.Args) == 0 {
			return nil
		}
		keyPH := b.bind(p.Key)
		likes := make([]string, len(p.Args))
		for i, arg := range p.Args {
			likes[i] = fmt.Sprintf("%s->>%s LIKE %s", p.Field, keyPH, b.bind(likePattern(arg)))
		}
		b.clauses = append(b.clauses, grouped(likes, " OR "))

	case domain.OpJSONNotLike:
		if len(p.Args) == 0 {
			return nil
		}
		keyPH := b.bind(p.Key)
		b.clauses = append(b.clauses, fmt.Sprintf(
			"(%s->>%s IS NOT NULL AND %s->>%s NOT LIKE %s)",
			p.Field, keyPH, p.Field, keyPH, b.bind(likePattern(p.Args[0]))))

	case domain.OpNonEmpty:
		if _, isArray := arrayColumns[p.Field]; isArray {
			b.clauses = append(b.clauses,
				fmt.Sprintf("(%s IS NOT NULL AND %s != '{}')", p.Field, p.Field))
		} else {
			b.clauses = append(b.clauses,
				fmt.Sprintf("(%s IS NOT NULL AND %s != '')", p.Field, p.Field))
		}

	case domain.OpExcludesValue:
		if len(p.Args) == 0 {
			return nil
		}
		b.clauses = append(b.clauses,
			fmt.Sprintf("NOT (%s = ANY(%s))", b.bind(p.Args[0]), p.Field))

	default:
		return fmt.Errorf("render predicate: unsupported operator %q", p.Op)
	}
	return nil
}

func grouped(clauses []string, sep string) string {
	if len(clauses) == 1 {
		return clauses[0]
	}
	return "(" + strings.Join(clauses, sep) + ")"
}

func likePattern(arg any) string {
	return "%" + fmt.Sprint(arg) + "%"
}

func vectorLiteral(vector []float32) string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, v := range vector {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.FormatFloat(float64(v), 'f', -1, 32))
	}
	sb.WriteByte(']')
	return sb.String()
}

func scanPanel(rows *sql.Rows) (domain.Panel, error) {
	var (
		panel      domain.Panel
		age        sql.NullInt64
		gender     sql.NullString
		residence  sql.NullString
		occupation sql.NullString
		marital    sql.NullString
		phoneBrand sql.NullString
		carBrand   sql.NullString
		summary    sql.NullString
		hashtags   []byte
		devices    []byte
		smoking    []byte
		cigarettes []byte
		eCigarette []byte
		drinking   []byte
		health     []byte
		consume    []byte
		lifestyle  []byte
		digital    []byte
		environ    []byte
		similarity sql.NullFloat64
	)

	err := rows.Scan(
		&panel.PanelID, &age, &gender, &residence, &occupation, &marital,
		&phoneBrand, &carBrand, &summary,
		&hashtags, &devices, &smoking, &cigarettes, &eCigarette, &drinking,
		&health, &consume, &lifestyle, &digital, &environ,
		&similarity,
	)
	if err != nil {
		return domain.Panel{}, fmt.Errorf("scan panel: %w", err)
	}

	if age.Valid {
		v := int(age.Int64)
		panel.Age = &v
	}
	panel.Gender = gender.String
	panel.Residence = residence.String
	panel.Occupation = occupation.String
	panel.MaritalStatus = marital.String
	panel.PhoneBrand = phoneBrand.String
	panel.CarBrand = carBrand.String
	panel.ProfileSummary = summary.String
	panel.Hashtags = decodeStringList(hashtags)
	panel.ElectronicDevices = decodeStringList(devices)
	panel.SmokingExperience = decodeStringList(smoking)
	panel.CigaretteBrands = decodeStringList(cigarettes)
	panel.ECigarette = decodeStringList(eCigarette)
	panel.DrinkingExperience = decodeStringList(drinking)
	panel.SurveyHealth = decodeDocument(health)
	panel.SurveyConsumption = decodeDocument(consume)
	panel.SurveyLifestyle = decodeDocument(lifestyle)
	panel.SurveyDigital = decodeDocument(digital)
	panel.SurveyEnvironment = decodeDocument(environ)
	if similarity.Valid {
		v := similarity.Float64
		panel.Similarity = &v
	}
	return panel, nil
}

func decodeStringList(raw []byte) []string {
	if len(raw) == 0 {
		return nil
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return list
	}
	var single string
	if err := json.Unmarshal(raw, &single); err == nil && single != "" {
		return []string{single}
	}
	return nil
}

func decodeDocument(raw []byte) map[string]any {
	if len(raw) == 0 {
		return nil
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil
	}
	return doc
}
