/*
Package ledger keeps a SQLite-backed history of generation runs. Each run
gets a row in ledger_runs, and every page it writes gets a row in
ledger_pages with its file name, source row, SHA-256 checksum, size and
<title>. Comparing checksums across runs shows which pages actually changed
after a data or template edit.

The package only needs a *sql.DB; callers choose the driver.
*/
package ledger
