package querybuilder

import "testing"

func TestSelectBuilder(t *testing.T) {
	t.Parallel()

	query, args, err := Select("id", "status").
		From("contests").
		Where(Eq("match_id", "m-1"), IsNull("deleted_at")).
		OrderBy("id").
		Limit(10).
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT id, status FROM contests WHERE match_id = $1 AND deleted_at IS NULL ORDER BY id LIMIT 10"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 1 || args[0] != "m-1" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestSelectBuilderForUpdateAndIn(t *testing.T) {
	t.Parallel()

	query, args, err := Select("*").
		From("player_match_stats").
		Where(Eq("match_id", "m-1"), InStrings("player_id", []string{"p1", "p2"})).
		ForUpdate().
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT * FROM player_match_stats WHERE match_id = $1 AND player_id IN ($2, $3) FOR UPDATE"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 3 || args[2] != "p2" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestEmptyInNeverMatches(t *testing.T) {
	t.Parallel()

	query, args, err := Select("id").From("fantasy_teams").Where(In("id", nil)).ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}
	if query != "SELECT id FROM fantasy_teams WHERE 1=0" || len(args) != 0 {
		t.Fatalf("unexpected query=%s args=%+v", query, args)
	}
}

func TestInsertBuilder(t *testing.T) {
	t.Parallel()

	query, args, err := InsertInto("wallet_transactions").
		Columns("id", "amount").
		Values("tx-1", "176.00").
		Suffix("ON CONFLICT (contest_id, user_id, rank) DO NOTHING RETURNING id").
		ToSQL()
	if err != nil {
		t.Fatalf("build insert query: %v", err)
	}

	wantQuery := "INSERT INTO wallet_transactions (id, amount) VALUES ($1, $2) ON CONFLICT (contest_id, user_id, rank) DO NOTHING RETURNING id"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[0] != "tx-1" || args[1] != "176.00" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestUpdateBuilder(t *testing.T) {
	t.Parallel()

	query, args, err := Update("contests").
		Set("status", "settled").
		SetExpr("updated_at", "NOW()").
		Where(Eq("id", "c-1"), Eq("status", "settling")).
		ToSQL()
	if err != nil {
		t.Fatalf("build update query: %v", err)
	}

	wantQuery := "UPDATE contests SET status = $1, updated_at = NOW() WHERE id = $2 AND status = $3"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 3 || args[0] != "settled" || args[2] != "settling" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestUpdateBuilderExprArgs(t *testing.T) {
	t.Parallel()

	query, args, err := Update("wallets").
		SetExpr("cash_balance", "cash_balance + ?", "12.50").
		Where(Eq("user_id", "u-1")).
		ToSQL()
	if err != nil {
		t.Fatalf("build update query: %v", err)
	}
	if query != "UPDATE wallets SET cash_balance = cash_balance + $1 WHERE user_id = $2" {
		t.Fatalf("unexpected query: %s", query)
	}
	if len(args) != 2 || args[0] != "12.50" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

type statRow struct {
	MatchID  string `db:"match_id"`
	PlayerID string `db:"player_id"`
	Runs     int    `db:"runs"`
	internal string
	Ignored  string `db:"-"`
}

func TestInsertModels(t *testing.T) {
	t.Parallel()

	rows := []statRow{
		{MatchID: "m-1", PlayerID: "p1", Runs: 12, internal: "x"},
		{MatchID: "m-1", PlayerID: "p2", Runs: 0},
	}
	query, args, err := InsertModels("player_match_stats", rows, "ON CONFLICT (match_id, player_id) DO UPDATE SET runs = EXCLUDED.runs")
	if err != nil {
		t.Fatalf("build insert models: %v", err)
	}

	wantQuery := "INSERT INTO player_match_stats (match_id, player_id, runs) VALUES ($1, $2, $3), ($4, $5, $6) ON CONFLICT (match_id, player_id) DO UPDATE SET runs = EXCLUDED.runs"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 6 || args[4] != "p2" {
		t.Fatalf("unexpected args: %+v", args)
	}
	if cols := Columns(statRow{}); len(cols) != 3 {
		t.Fatalf("unexpected columns: %v", cols)
	}

	if _, _, err := InsertModels[statRow]("player_match_stats", nil, ""); err == nil {
		t.Fatalf("expected error for empty models")
	}
}
