package main

import (
	"sync"

	"github.com/yamlkit/yls/parse"
)

type documentStore struct {
	mu   sync.RWMutex
	docs map[string]*document
}

type document struct {
	uri     string
	content string
	version int32
	parsed  *parse.Document
}

func newDocumentStore() *documentStore {
	return &documentStore{docs: map[string]*document{}}
}

func (ds *documentStore) get(uri string) *document {
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	return ds.docs[uri]
}

// put parses and stores a document version. Parse failures still store
// the document; the parse error travels as a problem on the parsed
// result.
func (ds *documentStore) put(uri, content string, version int32) *document {
	parsed, _ := parse.Parse([]byte(content))
	doc := &document{
		uri:     uri,
		content: content,
		version: version,
		parsed:  parsed,
	}
	ds.mu.Lock()
	ds.docs[uri] = doc
	ds.mu.Unlock()
	return doc
}

func (ds *documentStore) remove(uri string) {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	delete(ds.docs, uri)
}

func (ds *documentStore) all() []*document {
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	res := make([]*document, 0, len(ds.docs))
	for _, doc := range ds.docs {
		res = append(res, doc)
	}
	return res
}
