// atlas 的 external_schema 載入程式，將 gorm model 轉成 DDL 輸出到 stdout
package main

import (
	"fmt"
	"io"
	"os"

	"ariga.io/atlas-provider-gorm/gormschema"

	"zenthra/models"
)

func errExit(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

func main() {
	dialect := "postgres"
	if len(os.Args) > 1 {
		dialect = os.Args[1]
	}
	stmts, err := gormschema.New(dialect).Load(models.All()...)
	if err != nil {
		errExit("fail to load gorm schema, err=%v", err)
	}
	if _, err := io.WriteString(os.Stdout, stmts); err != nil {
		errExit("fail to write schema, err=%v", err)
	}
}
