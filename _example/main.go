package main

import (
	"fmt"

	distsql "gopkg.in/src-d/go-distsql.v0"
	"gopkg.in/src-d/go-distsql.v0/mem"
	"gopkg.in/src-d/go-distsql.v0/sql"
	"gopkg.in/src-d/go-distsql.v0/sql/expression"
	"gopkg.in/src-d/go-distsql.v0/sql/expression/function/aggregation"
	"gopkg.in/src-d/go-distsql.v0/sql/plan"
)

// Example of aggregating a partitioned in-memory table with parallel
// scans and disk spilling enabled:
//
// ```
// $ go run main.go
// repo=go-git count=3 avg_files=3.3333333333333335
// repo=go-siva count=2 avg_files=1.5
// repo=go-billy count=1 avg_files=4
// ```
func main() {
	engine := distsql.New(distsql.Config{
		Parallelism:     4,
		MaxMemoryGroups: 1024,
	})

	repo := expression.NewGetFieldWithTable(0, sql.Text, "commits", "repo", false)
	files := expression.NewGetFieldWithTable(1, sql.Int64, "commits", "files", false)

	node := plan.NewGroupBy(
		[]sql.Expression{
			repo,
			expression.NewAlias("count", aggregation.NewCount(files)),
			expression.NewAlias("avg_files", aggregation.NewAvg(files)),
		},
		[]sql.Expression{repo},
		plan.NewResolvedTable(createTestTable()),
	)

	ctx := sql.NewEmptyContext()
	_, iter, err := engine.Execute(ctx, node)
	if err != nil {
		panic(err)
	}

	rows, err := sql.RowIterToRows(iter)
	if err != nil {
		panic(err)
	}

	for _, row := range rows {
		fmt.Printf("repo=%v count=%v avg_files=%v\n", row[0], row[1], row[2])
	}
}

func createTestTable() *mem.Table {
	table := mem.NewPartitionedTable("commits", sql.Schema{
		{Name: "repo", Type: sql.Text, Source: "commits"},
		{Name: "files", Type: sql.Int64, Source: "commits"},
	}, 4)

	commits := []struct {
		repo  string
		files int64
	}{
		{"go-git", 3}, {"go-git", 5}, {"go-siva", 1},
		{"go-git", 2}, {"go-billy", 4}, {"go-siva", 2},
	}

	for _, c := range commits {
		if err := table.Insert(sql.NewRow(c.repo, c.files)); err != nil {
			panic(err)
		}
	}

	return table
}
