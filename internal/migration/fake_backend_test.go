package migration

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/baasworks/migration-studio/internal/backend"
	"github.com/baasworks/migration-studio/internal/models"
)

// fakeBackend is an in-memory backend project behind an httptest server.
// It implements just enough of the REST surface for the planner, executor
// and worker dispatcher, and records every create in order so tests can
// assert dependency sequencing.
type fakeBackend struct {
	mu sync.Mutex

	databases   map[string]backend.Database
	collections map[string]map[string]backend.Collection // db to col
	attributes  map[string][]backend.Attribute           // "db/col"
	indexes     map[string][]backend.Index               // "db/col"
	documents   map[string][]backend.Document            // "db/col", creation order

	buckets map[string]backend.Bucket
	files   map[string][]backend.File // bucket, creation order
	blobs   map[string][]byte         // "bucket/file"

	functions   map[string]backend.Function
	variables   map[string][]backend.Variable
	deployments map[string][]backend.Deployment // function
	archives    map[string][]byte               // "fn/dep"

	users       map[string]backend.User
	teams       map[string]backend.Team
	memberships map[string][]backend.Membership

	// createLog records destination writes as "kind:id" in call order.
	createLog []string

	// failDocs makes document creation return 500 for the given IDs.
	failDocs map[string]bool

	// conflictCreates makes creation of the given IDs return 409 even though
	// a get still reports them missing, like a concurrent writer landing
	// between the two calls.
	conflictCreates map[string]bool

	// deployStatuses is consumed one status per GetDeployment poll; when
	// exhausted the last value repeats. Defaults to ["ready"].
	deployStatuses []string
	pollCount      int

	// execResponse produces the worker execution response body.
	execResponse func(payload string) string

	srv *httptest.Server
}

func newFakeBackend(t *testing.T) *fakeBackend {
	b := &fakeBackend{
		databases:       make(map[string]backend.Database),
		collections:     make(map[string]map[string]backend.Collection),
		attributes:      make(map[string][]backend.Attribute),
		indexes:         make(map[string][]backend.Index),
		documents:       make(map[string][]backend.Document),
		buckets:         make(map[string]backend.Bucket),
		files:           make(map[string][]backend.File),
		blobs:           make(map[string][]byte),
		functions:       make(map[string]backend.Function),
		variables:       make(map[string][]backend.Variable),
		deployments:     make(map[string][]backend.Deployment),
		archives:        make(map[string][]byte),
		users:           make(map[string]backend.User),
		teams:           make(map[string]backend.Team),
		memberships:     make(map[string][]backend.Membership),
		failDocs:        make(map[string]bool),
		conflictCreates: make(map[string]bool),
	}
	b.srv = httptest.NewServer(b.router())
	t.Cleanup(b.srv.Close)
	return b
}

func (b *fakeBackend) project(name string) *models.Project {
	return &models.Project{
		ID:        name,
		Name:      name,
		Endpoint:  b.srv.URL,
		ProjectID: name,
		APIKey:    "key-" + name,
	}
}

func (b *fakeBackend) logged(kind, id string) {
	b.createLog = append(b.createLog, kind+":"+id)
}

// creates returns the ordered create log.
func (b *fakeBackend) creates() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, len(b.createLog))
	copy(out, b.createLog)
	return out
}

func fakeErr(w http.ResponseWriter, status int, msg string) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"message": msg})
}

func fakeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func decodeBody(r *http.Request) map[string]interface{} {
	var body map[string]interface{}
	json.NewDecoder(r.Body).Decode(&body)
	return body
}

func str(body map[string]interface{}, key string) string {
	s, _ := body[key].(string)
	return s
}

func pageBounds(r *http.Request, ids []string) (start, end int) {
	limit := 100
	if l := r.URL.Query().Get("limit"); l != "" {
		limit, _ = strconv.Atoi(l)
	}
	start = 0
	if cursor := r.URL.Query().Get("cursor"); cursor != "" {
		for i, id := range ids {
			if id == cursor {
				start = i + 1
				break
			}
		}
	}
	end = start + limit
	if end > len(ids) {
		end = len(ids)
	}
	return start, end
}

func (b *fakeBackend) router() http.Handler {
	r := chi.NewRouter()

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		fakeJSON(w, map[string]string{"status": "ok"})
	})

	r.Route("/databases", func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
			b.mu.Lock()
			defer b.mu.Unlock()
			list := make([]backend.Database, 0, len(b.databases))
			for _, db := range b.databases {
				list = append(list, db)
			}
			fakeJSON(w, map[string]interface{}{"total": len(list), "databases": list})
		})
		r.Post("/", func(w http.ResponseWriter, req *http.Request) {
			b.mu.Lock()
			defer b.mu.Unlock()
			body := decodeBody(req)
			id := str(body, "databaseId")
			if _, ok := b.databases[id]; ok || b.conflictCreates[id] {
				fakeErr(w, http.StatusConflict, "database already exists")
				return
			}
			db := backend.Database{ID: id, Name: str(body, "name")}
			b.databases[id] = db
			b.collections[id] = make(map[string]backend.Collection)
			b.logged("db", id)
			fakeJSON(w, db)
		})
		r.Get("/{db}", func(w http.ResponseWriter, req *http.Request) {
			b.mu.Lock()
			defer b.mu.Unlock()
			db, ok := b.databases[chi.URLParam(req, "db")]
			if !ok {
				fakeErr(w, http.StatusNotFound, "database not found")
				return
			}
			fakeJSON(w, db)
		})

		r.Route("/{db}/collections", func(r chi.Router) {
			r.Get("/", func(w http.ResponseWriter, req *http.Request) {
				b.mu.Lock()
				defer b.mu.Unlock()
				cols := b.collections[chi.URLParam(req, "db")]
				list := make([]backend.Collection, 0, len(cols))
				for _, c := range cols {
					list = append(list, c)
				}
				fakeJSON(w, map[string]interface{}{"total": len(list), "collections": list})
			})
			r.Post("/", func(w http.ResponseWriter, req *http.Request) {
				b.mu.Lock()
				defer b.mu.Unlock()
				dbID := chi.URLParam(req, "db")
				if _, ok := b.databases[dbID]; !ok {
					fakeErr(w, http.StatusNotFound, "database not found")
					return
				}
				body := decodeBody(req)
				id := str(body, "collectionId")
				if _, ok := b.collections[dbID][id]; ok || b.conflictCreates[id] {
					fakeErr(w, http.StatusConflict, "collection already exists")
					return
				}
				col := backend.Collection{ID: id, Name: str(body, "name"), Enabled: true}
				if perms, ok := body["permissions"].([]interface{}); ok {
					for _, p := range perms {
						col.Permissions = append(col.Permissions, p.(string))
					}
				}
				b.collections[dbID][id] = col
				b.logged("col", id)
				fakeJSON(w, col)
			})
			r.Get("/{col}", func(w http.ResponseWriter, req *http.Request) {
				b.mu.Lock()
				defer b.mu.Unlock()
				col, ok := b.collections[chi.URLParam(req, "db")][chi.URLParam(req, "col")]
				if !ok {
					fakeErr(w, http.StatusNotFound, "collection not found")
					return
				}
				fakeJSON(w, col)
			})

			r.Get("/{col}/attributes", func(w http.ResponseWriter, req *http.Request) {
				b.mu.Lock()
				defer b.mu.Unlock()
				key := chi.URLParam(req, "db") + "/" + chi.URLParam(req, "col")
				attrs := b.attributes[key]
				fakeJSON(w, map[string]interface{}{"total": len(attrs), "attributes": attrs})
			})
			r.Post("/{col}/attributes/{kind}", func(w http.ResponseWriter, req *http.Request) {
				b.mu.Lock()
				defer b.mu.Unlock()
				key := chi.URLParam(req, "db") + "/" + chi.URLParam(req, "col")
				kind := chi.URLParam(req, "kind")
				body := decodeBody(req)
				attrKey := str(body, "key")
				for _, a := range b.attributes[key] {
					if a.Key == attrKey {
						fakeErr(w, http.StatusConflict, "attribute already exists")
						return
					}
				}
				attr := backend.Attribute{Key: attrKey, Status: "available"}
				switch kind {
				case "string":
					attr.Type = "string"
				case "email", "url", "ip", "enum", "datetime":
					attr.Type = "string"
					attr.Format = kind
				case "integer":
					attr.Type = "integer"
					attr.Min = body["min"]
					attr.Max = body["max"]
				case "float":
					attr.Type = "double"
					attr.Min = body["min"]
					attr.Max = body["max"]
				case "boolean":
					attr.Type = "boolean"
				case "relationship":
					attr.Type = "relationship"
					attr.RelatedCollection = str(body, "relatedCollection")
				default:
					fakeErr(w, http.StatusBadRequest, "unknown attribute kind "+kind)
					return
				}
				attr.Default = body["default"]
				b.attributes[key] = append(b.attributes[key], attr)
				b.logged("attr", attrKey)
				fakeJSON(w, attr)
			})

			r.Get("/{col}/indexes", func(w http.ResponseWriter, req *http.Request) {
				b.mu.Lock()
				defer b.mu.Unlock()
				key := chi.URLParam(req, "db") + "/" + chi.URLParam(req, "col")
				idx := b.indexes[key]
				fakeJSON(w, map[string]interface{}{"total": len(idx), "indexes": idx})
			})
			r.Post("/{col}/indexes", func(w http.ResponseWriter, req *http.Request) {
				b.mu.Lock()
				defer b.mu.Unlock()
				key := chi.URLParam(req, "db") + "/" + chi.URLParam(req, "col")
				var idx backend.Index
				json.NewDecoder(req.Body).Decode(&idx)
				b.indexes[key] = append(b.indexes[key], idx)
				b.logged("index", idx.Key)
				fakeJSON(w, idx)
			})

			r.Get("/{col}/documents", func(w http.ResponseWriter, req *http.Request) {
				b.mu.Lock()
				defer b.mu.Unlock()
				key := chi.URLParam(req, "db") + "/" + chi.URLParam(req, "col")
				docs := b.documents[key]
				ids := make([]string, len(docs))
				for i, d := range docs {
					ids[i] = d.ID()
				}
				start, end := pageBounds(req, ids)
				fakeJSON(w, map[string]interface{}{"total": len(docs), "documents": docs[start:end]})
			})
			r.Post("/{col}/documents", func(w http.ResponseWriter, req *http.Request) {
				b.mu.Lock()
				defer b.mu.Unlock()
				key := chi.URLParam(req, "db") + "/" + chi.URLParam(req, "col")
				body := decodeBody(req)
				id := str(body, "documentId")
				if b.failDocs[id] {
					fakeErr(w, http.StatusInternalServerError, "simulated failure")
					return
				}
				for _, d := range b.documents[key] {
					if d.ID() == id {
						fakeErr(w, http.StatusConflict, "document already exists")
						return
					}
				}
				doc := backend.Document{"$id": id}
				if data, ok := body["data"].(map[string]interface{}); ok {
					for k, v := range data {
						doc[k] = v
					}
				}
				if perms, ok := body["permissions"].([]interface{}); ok {
					doc["$permissions"] = perms
				}
				b.documents[key] = append(b.documents[key], doc)
				b.logged("doc", id)
				fakeJSON(w, doc)
			})
			r.Get("/{col}/documents/{id}", func(w http.ResponseWriter, req *http.Request) {
				b.mu.Lock()
				defer b.mu.Unlock()
				key := chi.URLParam(req, "db") + "/" + chi.URLParam(req, "col")
				for _, d := range b.documents[key] {
					if d.ID() == chi.URLParam(req, "id") {
						fakeJSON(w, d)
						return
					}
				}
				fakeErr(w, http.StatusNotFound, "document not found")
			})
		})
	})

	r.Route("/storage/buckets", func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
			b.mu.Lock()
			defer b.mu.Unlock()
			list := make([]backend.Bucket, 0, len(b.buckets))
			for _, bk := range b.buckets {
				list = append(list, bk)
			}
			fakeJSON(w, map[string]interface{}{"total": len(list), "buckets": list})
		})
		r.Post("/", func(w http.ResponseWriter, req *http.Request) {
			b.mu.Lock()
			defer b.mu.Unlock()
			body := decodeBody(req)
			id := str(body, "bucketId")
			if _, ok := b.buckets[id]; ok || b.conflictCreates[id] {
				fakeErr(w, http.StatusConflict, "bucket already exists")
				return
			}
			bk := backend.Bucket{ID: id, Name: str(body, "name"), Enabled: true}
			b.buckets[id] = bk
			b.logged("bucket", id)
			fakeJSON(w, bk)
		})
		r.Get("/{bucket}", func(w http.ResponseWriter, req *http.Request) {
			b.mu.Lock()
			defer b.mu.Unlock()
			bk, ok := b.buckets[chi.URLParam(req, "bucket")]
			if !ok {
				fakeErr(w, http.StatusNotFound, "bucket not found")
				return
			}
			fakeJSON(w, bk)
		})
		r.Get("/{bucket}/files", func(w http.ResponseWriter, req *http.Request) {
			b.mu.Lock()
			defer b.mu.Unlock()
			files := b.files[chi.URLParam(req, "bucket")]
			ids := make([]string, len(files))
			for i, f := range files {
				ids[i] = f.ID
			}
			start, end := pageBounds(req, ids)
			fakeJSON(w, map[string]interface{}{"total": len(files), "files": files[start:end]})
		})
		r.Post("/{bucket}/files", func(w http.ResponseWriter, req *http.Request) {
			if err := req.ParseMultipartForm(32 << 20); err != nil {
				fakeErr(w, http.StatusBadRequest, "bad multipart body")
				return
			}
			b.mu.Lock()
			defer b.mu.Unlock()
			bucketID := chi.URLParam(req, "bucket")
			id := req.FormValue("fileId")
			for _, f := range b.files[bucketID] {
				if f.ID == id {
					fakeErr(w, http.StatusConflict, "file already exists")
					return
				}
			}
			file, hdr, err := req.FormFile("file")
			if err != nil {
				fakeErr(w, http.StatusBadRequest, "missing file")
				return
			}
			defer file.Close()
			blob, err := io.ReadAll(file)
			if err != nil {
				fakeErr(w, http.StatusBadRequest, "reading file part")
				return
			}
			f := backend.File{
				ID:           id,
				BucketID:     bucketID,
				Name:         hdr.Filename,
				Permissions:  req.Form["permissions[]"],
				SizeOriginal: hdr.Size,
			}
			b.files[bucketID] = append(b.files[bucketID], f)
			b.blobs[bucketID+"/"+id] = blob
			b.logged("file", id)
			fakeJSON(w, f)
		})
		r.Get("/{bucket}/files/{file}", func(w http.ResponseWriter, req *http.Request) {
			b.mu.Lock()
			defer b.mu.Unlock()
			for _, f := range b.files[chi.URLParam(req, "bucket")] {
				if f.ID == chi.URLParam(req, "file") {
					fakeJSON(w, f)
					return
				}
			}
			fakeErr(w, http.StatusNotFound, "file not found")
		})
		r.Get("/{bucket}/files/{file}/download", func(w http.ResponseWriter, req *http.Request) {
			b.mu.Lock()
			defer b.mu.Unlock()
			blob, ok := b.blobs[chi.URLParam(req, "bucket")+"/"+chi.URLParam(req, "file")]
			if !ok {
				fakeErr(w, http.StatusNotFound, "file not found")
				return
			}
			w.Write(blob)
		})
	})

	r.Route("/functions", func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
			b.mu.Lock()
			defer b.mu.Unlock()
			list := make([]backend.Function, 0, len(b.functions))
			for _, fn := range b.functions {
				list = append(list, fn)
			}
			fakeJSON(w, map[string]interface{}{"total": len(list), "functions": list})
		})
		r.Post("/", func(w http.ResponseWriter, req *http.Request) {
			b.mu.Lock()
			defer b.mu.Unlock()
			body := decodeBody(req)
			id := str(body, "functionId")
			if _, ok := b.functions[id]; ok || b.conflictCreates[id] {
				fakeErr(w, http.StatusConflict, "function already exists")
				return
			}
			fn := backend.Function{
				ID:         id,
				Name:       str(body, "name"),
				Runtime:    str(body, "runtime"),
				Entrypoint: str(body, "entrypoint"),
				Enabled:    true,
			}
			b.functions[id] = fn
			b.logged("function", id)
			fakeJSON(w, fn)
		})
		r.Get("/{fn}", func(w http.ResponseWriter, req *http.Request) {
			b.mu.Lock()
			defer b.mu.Unlock()
			fn, ok := b.functions[chi.URLParam(req, "fn")]
			if !ok {
				fakeErr(w, http.StatusNotFound, "function not found")
				return
			}
			fakeJSON(w, fn)
		})
		r.Delete("/{fn}", func(w http.ResponseWriter, req *http.Request) {
			b.mu.Lock()
			defer b.mu.Unlock()
			id := chi.URLParam(req, "fn")
			if _, ok := b.functions[id]; !ok {
				fakeErr(w, http.StatusNotFound, "function not found")
				return
			}
			delete(b.functions, id)
			b.logged("delete-function", id)
			w.WriteHeader(http.StatusNoContent)
		})
		r.Get("/{fn}/variables", func(w http.ResponseWriter, req *http.Request) {
			b.mu.Lock()
			defer b.mu.Unlock()
			vars := b.variables[chi.URLParam(req, "fn")]
			fakeJSON(w, map[string]interface{}{"total": len(vars), "variables": vars})
		})
		r.Post("/{fn}/variables", func(w http.ResponseWriter, req *http.Request) {
			b.mu.Lock()
			defer b.mu.Unlock()
			fnID := chi.URLParam(req, "fn")
			body := decodeBody(req)
			v := backend.Variable{Key: str(body, "key"), Value: str(body, "value")}
			b.variables[fnID] = append(b.variables[fnID], v)
			b.logged("variable", v.Key)
			fakeJSON(w, v)
		})
		r.Get("/{fn}/deployments", func(w http.ResponseWriter, req *http.Request) {
			b.mu.Lock()
			defer b.mu.Unlock()
			deps := b.deployments[chi.URLParam(req, "fn")]
			fakeJSON(w, map[string]interface{}{"total": len(deps), "deployments": deps})
		})
		r.Post("/{fn}/deployments", func(w http.ResponseWriter, req *http.Request) {
			if err := req.ParseMultipartForm(32 << 20); err != nil {
				fakeErr(w, http.StatusBadRequest, "bad multipart body")
				return
			}
			b.mu.Lock()
			defer b.mu.Unlock()
			fnID := chi.URLParam(req, "fn")
			code, _, err := req.FormFile("code")
			if err != nil {
				fakeErr(w, http.StatusBadRequest, "missing code archive")
				return
			}
			defer code.Close()
			blob, err := io.ReadAll(code)
			if err != nil {
				fakeErr(w, http.StatusBadRequest, "reading code part")
				return
			}
			dep := backend.Deployment{
				ID:         fmt.Sprintf("dep-%d", len(b.deployments[fnID])+1),
				Status:     backend.DeploymentBuilding,
				Entrypoint: req.FormValue("entrypoint"),
			}
			b.deployments[fnID] = append(b.deployments[fnID], dep)
			b.archives[fnID+"/"+dep.ID] = blob
			b.logged("deployment", fnID)
			fakeJSON(w, dep)
		})
		r.Get("/{fn}/deployments/{dep}", func(w http.ResponseWriter, req *http.Request) {
			b.mu.Lock()
			defer b.mu.Unlock()
			for _, dep := range b.deployments[chi.URLParam(req, "fn")] {
				if dep.ID == chi.URLParam(req, "dep") {
					status := backend.DeploymentReady
					if len(b.deployStatuses) > 0 {
						i := b.pollCount
						if i >= len(b.deployStatuses) {
							i = len(b.deployStatuses) - 1
						}
						status = b.deployStatuses[i]
						b.pollCount++
					}
					dep.Status = status
					fakeJSON(w, dep)
					return
				}
			}
			fakeErr(w, http.StatusNotFound, "deployment not found")
		})
		r.Get("/{fn}/deployments/{dep}/download", func(w http.ResponseWriter, req *http.Request) {
			b.mu.Lock()
			defer b.mu.Unlock()
			blob, ok := b.archives[chi.URLParam(req, "fn")+"/"+chi.URLParam(req, "dep")]
			if !ok {
				fakeErr(w, http.StatusNotFound, "archive not found")
				return
			}
			w.Write(blob)
		})
		r.Post("/{fn}/executions", func(w http.ResponseWriter, req *http.Request) {
			body := decodeBody(req)
			b.mu.Lock()
			handler := b.execResponse
			b.mu.Unlock()
			resp := `{"status":"migrated"}`
			if handler != nil {
				resp = handler(str(body, "body"))
			}
			fakeJSON(w, backend.Execution{
				ID:           "exec-1",
				Status:       "completed",
				ResponseBody: resp,
			})
		})
	})

	r.Route("/users", func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, req *http.Request) {
			b.mu.Lock()
			defer b.mu.Unlock()
			list := make([]backend.User, 0, len(b.users))
			for _, u := range b.users {
				list = append(list, u)
			}
			fakeJSON(w, map[string]interface{}{"total": len(list), "users": list})
		})
		r.Post("/", func(w http.ResponseWriter, req *http.Request) {
			b.mu.Lock()
			defer b.mu.Unlock()
			body := decodeBody(req)
			id := str(body, "userId")
			if _, ok := b.users[id]; ok || b.conflictCreates[id] {
				fakeErr(w, http.StatusConflict, "user already exists")
				return
			}
			u := backend.User{ID: id, Name: str(body, "name"), Email: str(body, "email")}
			b.users[id] = u
			b.logged("user", id)
			fakeJSON(w, u)
		})
		r.Get("/{id}", func(w http.ResponseWriter, req *http.Request) {
			b.mu.Lock()
			defer b.mu.Unlock()
			u, ok := b.users[chi.URLParam(req, "id")]
			if !ok {
				fakeErr(w, http.StatusNotFound, "user not found")
				return
			}
			fakeJSON(w, u)
		})
	})

	r.Route("/teams", func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
			b.mu.Lock()
			defer b.mu.Unlock()
			list := make([]backend.Team, 0, len(b.teams))
			for _, t := range b.teams {
				list = append(list, t)
			}
			fakeJSON(w, map[string]interface{}{"total": len(list), "teams": list})
		})
		r.Post("/", func(w http.ResponseWriter, req *http.Request) {
			b.mu.Lock()
			defer b.mu.Unlock()
			body := decodeBody(req)
			id := str(body, "teamId")
			if _, ok := b.teams[id]; ok || b.conflictCreates[id] {
				fakeErr(w, http.StatusConflict, "team already exists")
				return
			}
			t := backend.Team{ID: id, Name: str(body, "name")}
			b.teams[id] = t
			b.logged("team", id)
			fakeJSON(w, t)
		})
		r.Get("/{id}", func(w http.ResponseWriter, req *http.Request) {
			b.mu.Lock()
			defer b.mu.Unlock()
			t, ok := b.teams[chi.URLParam(req, "id")]
			if !ok {
				fakeErr(w, http.StatusNotFound, "team not found")
				return
			}
			fakeJSON(w, t)
		})
		r.Get("/{id}/memberships", func(w http.ResponseWriter, req *http.Request) {
			b.mu.Lock()
			defer b.mu.Unlock()
			members := b.memberships[chi.URLParam(req, "id")]
			fakeJSON(w, map[string]interface{}{"total": len(members), "memberships": members})
		})
		r.Post("/{id}/memberships", func(w http.ResponseWriter, req *http.Request) {
			b.mu.Lock()
			defer b.mu.Unlock()
			teamID := chi.URLParam(req, "id")
			body := decodeBody(req)
			m := backend.Membership{ID: fmt.Sprintf("mem-%d", len(b.memberships[teamID])+1), UserID: str(body, "userId")}
			b.memberships[teamID] = append(b.memberships[teamID], m)
			b.logged("membership", m.UserID)
			fakeJSON(w, m)
		})
	})

	return r
}

// seedCollection registers a database + collection with the given attributes
// and indexes without touching the create log.
func (b *fakeBackend) seedCollection(dbID, dbName, colID, colName string, attrs []backend.Attribute, indexes []backend.Index) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.databases[dbID]; !ok {
		b.databases[dbID] = backend.Database{ID: dbID, Name: dbName}
		b.collections[dbID] = make(map[string]backend.Collection)
	}
	b.collections[dbID][colID] = backend.Collection{ID: colID, Name: colName, Enabled: true}
	key := dbID + "/" + colID
	b.attributes[key] = attrs
	b.indexes[key] = indexes
}

// seedDocuments appends documents in creation order.
func (b *fakeBackend) seedDocuments(dbID, colID string, docs ...backend.Document) {
	b.mu.Lock()
	defer b.mu.Unlock()
	key := dbID + "/" + colID
	b.documents[key] = append(b.documents[key], docs...)
}

func (b *fakeBackend) seedFile(bucketID, fileID, name string, blob []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.files[bucketID] = append(b.files[bucketID], backend.File{
		ID: fileID, BucketID: bucketID, Name: name, SizeOriginal: int64(len(blob)),
	})
	b.blobs[bucketID+"/"+fileID] = blob
}

func (b *fakeBackend) seedBucket(id, name string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buckets[id] = backend.Bucket{ID: id, Name: name, Enabled: true}
}

func discardLog(string) {}
