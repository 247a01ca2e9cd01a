// Package sqlstore is the relational outbound adapter implementing
// [ports.UserRepository] on database/sql.
//
// Statements are produced by [QueryBuilder], which only ever places user
// input in bound arguments. Execution runs through a [Guard]:
//
//	Circuit Breaker → Rate Limiter → Query
//
// Construction:
//
//	db, dialect, err := sqlstore.Open(cfg.Storage)
//	store := sqlstore.New(db, dialect, sqlstore.NewGuard(&cfg.Storage, logger), metrics, logger)
package sqlstore
