package sqlstore

import (
	"strings"

	"github.com/google/uuid"

	"github.com/jsamuelsen11/user-lookup-service/internal/domain/user"
)

const (
	selectUsers   = "SELECT uuid, name, age, grade, active FROM users"
	orderUsers    = " ORDER BY name, uuid"
	likeEscape    = `\`
	likeWildcard  = "%"
	likeEscapeSQL = " ESCAPE '" + likeEscape + "'"
)

// likeEscaper neutralizes LIKE metacharacters so a name matches literally.
var likeEscaper = strings.NewReplacer(
	likeEscape, likeEscape+likeEscape,
	"%", likeEscape+"%",
	"_", likeEscape+"_",
)

// Statement is a parameterized query ready for database/sql. Text never
// contains request data; every request value lives in Args.
type Statement struct {
	Text string
	Args []any
}

// QueryBuilder produces user statements for one dialect.
type QueryBuilder struct {
	dialect Dialect
}

// NewQueryBuilder returns a builder emitting bind markers for d.
func NewQueryBuilder(d Dialect) QueryBuilder {
	return QueryBuilder{dialect: d}
}

// ByID selects the single user with the given identifier.
func (q QueryBuilder) ByID(id uuid.UUID) Statement {
	b := q.start()
	b.write(" WHERE uuid = ")
	b.bind(id)
	return b.statement()
}

// Search selects users whose name contains f.Name (case-sensitive) and whose
// grade equals f.Grade. When f carries filters, age and active must also
// match exactly.
func (q QueryBuilder) Search(f user.SearchFilter) Statement {
	b := q.start()

	b.write(" WHERE name LIKE ")
	b.bind(containsPattern(f.Name))
	b.write(likeEscapeSQL)
	b.write(" AND grade = ")
	b.bind(int16(f.Grade))

	if f.HasFilters() {
		b.write(" AND age = ")
		b.bind(int16(f.Filters.Age))
		b.write(" AND active = ")
		b.bind(f.Filters.Active)
	}

	b.write(orderUsers)
	return b.statement()
}

func (q QueryBuilder) start() *statementBuilder {
	b := &statementBuilder{dialect: q.dialect}
	b.write(selectUsers)
	return b
}

// containsPattern wraps the escaped name in wildcards.
func containsPattern(name string) string {
	return likeWildcard + likeEscaper.Replace(name) + likeWildcard
}

type statementBuilder struct {
	dialect Dialect
	text    strings.Builder
	args    []any
}

func (b *statementBuilder) write(s string) {
	b.text.WriteString(s)
}

// bind records v as the next argument and writes its marker.
func (b *statementBuilder) bind(v any) {
	b.args = append(b.args, v)
	b.text.WriteString(b.dialect.Placeholder(len(b.args)))
}

func (b *statementBuilder) statement() Statement {
	return Statement{Text: b.text.String(), Args: b.args}
}
