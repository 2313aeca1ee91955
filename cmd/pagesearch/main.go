// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Command pagesearch runs a fuzzy search over the bundled wiki dataset
// without opening any storage.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/poiesic/catscan/dataset"
	"github.com/poiesic/catscan/search"
)

func init() {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
}

func main() {
	pages, err := dataset.LoadBundled()
	if err != nil {
		panic(err)
	}
	store, err := search.NewStore(search.WithPages(pages))
	if err != nil {
		panic(err)
	}

	query := "amazon"
	if len(os.Args) > 1 {
		query = strings.Join(os.Args[1:], " ")
	}
	results := store.FuzzySearch(query, false)

	fmt.Printf("Found %d hits\n", results.Len())
	i := 0
	for entry := range results.All() {
		fmt.Printf("%d: '%s' (%d)[%s]\n", i, entry.Title(), entry.EntryID(), entry.ArticleType())
		i++
	}
}
