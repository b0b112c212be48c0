package echoapi_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/xuri/excelize/v2"

	. "github.com/trezcool/schooldash/apps/api/echo"
	"github.com/trezcool/schooldash/core/listing"
	"github.com/trezcool/schooldash/core/school"
	"github.com/trezcool/schooldash/core/user"
	mediasvc "github.com/trezcool/schooldash/services/media"
	sessionsvc "github.com/trezcool/schooldash/services/session"
	"github.com/trezcool/schooldash/storage/database/dummy"
	testutil "github.com/trezcool/schooldash/tests"
)

type fixture struct {
	app          *Server
	db           *dummydb.DB
	seed         *testutil.School
	adminToken   string
	teacherToken string
}

func setup(t *testing.T) fixture {
	conf := testutil.NewConfig()
	conf.Server.MediaDir = t.TempDir()

	// set up DB & repos
	db, _ := dummydb.Open()
	seed := testutil.SeedSchool(t, db)
	usrRepo := dummydb.NewUserRepository(db)

	// set up services
	validate, translator := testutil.NewValidator()
	media, err := mediasvc.NewDiskStore(conf.Server.MediaDir)
	if err != nil {
		t.Fatalf("NewDiskStore() failed: %v", err)
	}
	usrSvc := user.NewService(usrRepo, validate, translator)
	schoolSvc := school.NewService(
		dummydb.NewSchoolRepository(db), media, testutil.NewMailer(conf), validate, translator, conf.Listing,
	)

	// set up server
	app, err := NewServer(ServerDeps{
		Conf:       conf,
		Logger:     testutil.NewLogger(conf),
		UserSvc:    usrSvc,
		SchoolSvc:  schoolSvc,
		Tokens:     sessionsvc.NewMemoryStore(),
		Translator: translator,
	})
	if err != nil {
		t.Fatalf("NewServer() failed: %v", err)
	}

	admin := testutil.CreateUser(t, usrRepo, "admin", "Adm1n-pwd!", user.RoleAdmin, true)
	teacher := testutil.CreateUser(t, usrRepo, "jdoe", "Teach3r-pwd!", user.RoleTeacher, true)
	teacher.PersonID = seed.Teachers[0]
	return fixture{
		app:          app,
		db:           db,
		seed:         seed,
		adminToken:   getToken(t, admin),
		teacherToken: getToken(t, teacher),
	}
}

func getToken(t *testing.T, usr user.User) string {
	conf := testutil.NewConfig()
	token, err := GenerateToken(GetUserClaims(usr, conf), conf.SecretKey)
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	form     url.Values
	token    string
	accept   string
	wantCode int
	wantData []byte
}

func (tt httpTest) request() (*http.Request, *httptest.ResponseRecorder) {
	method := tt.method
	if method == "" {
		method = http.MethodGet
	}
	var body *bytes.Reader
	contentType := "application/json"
	switch {
	case tt.form != nil:
		body = bytes.NewReader([]byte(tt.form.Encode()))
		contentType = "application/x-www-form-urlencoded"
	default:
		body = bytes.NewReader(tt.body)
	}
	req := httptest.NewRequest(method, tt.path, body)
	req.Header.Set("Content-Type", contentType)
	if tt.accept != "" {
		req.Header.Set("Accept", tt.accept)
	}
	if tt.token != "" {
		req.Header.Set("Authorization", "Bearer "+tt.token)
	}
	return req, httptest.NewRecorder()
}

func (f fixture) serve(tt httpTest) *httptest.ResponseRecorder {
	req, rec := tt.request()
	f.app.ServeHTTP(rec, req)
	return rec
}

func marshalObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshalObj() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

type listResult struct {
	Count int                      `json:"count"`
	Page  int                      `json:"page"`
	Pages int                      `json:"pages"`
	Rows  []map[string]interface{} `json:"rows"`
}

func (f fixture) list(t *testing.T, path, token string) (int, listResult) {
	rec := f.serve(httpTest{path: path, token: token, accept: "application/json"})
	var res listResult
	if rec.Code == http.StatusOK {
		if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
			t.Fatalf("decoding %s: %v", path, err)
		}
	}
	return rec.Code, res
}

func multipartBody(t *testing.T, fields map[string]string, img []byte) ([]byte, string) {
	body := new(bytes.Buffer)
	w := multipart.NewWriter(body)
	for k, v := range fields {
		_ = w.WriteField(k, v)
	}
	if img != nil {
		part, err := w.CreateFormFile("img", "me.png")
		if err != nil {
			t.Fatal(err)
		}
		_, _ = part.Write(img)
	}
	_ = w.Close()
	return body.Bytes(), w.FormDataContentType()
}

func Test_home(t *testing.T) {
	f := setup(t)
	rec := f.serve(httpTest{path: "/"})
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/list/exams", rec.Header().Get("Location"))
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func contains(s string, subs ...string) bool {
	for _, sub := range subs {
		if !strings.Contains(s, sub) {
			return false
		}
	}
	return true
}

func Test_auth(t *testing.T) {
	f := setup(t)

	tests := []httpTest{
		{
			name:     "no token",
			path:     "/list/subjects",
			accept:   "application/json",
			wantCode: http.StatusUnauthorized,
			wantData: marshalObj(t, httpErr{Error: "user not authenticated"}),
		},
		{
			name:     "bad token",
			path:     "/list/subjects",
			token:    "abc.def.ghi",
			accept:   "application/json",
			wantCode: http.StatusUnauthorized,
			wantData: marshalObj(t, httpErr{Error: "user not authenticated"}),
		},
		{
			name:     "no token, page request",
			path:     "/list/subjects",
			accept:   "text/html",
			wantCode: http.StatusFound,
		},
		{
			name:     "no token, mutation",
			method:   http.MethodDelete,
			path:     "/list/subjects/1",
			wantCode: http.StatusUnauthorized,
		},
		{
			name:     "wrong password",
			method:   http.MethodPost,
			path:     "/login",
			body:     marshalObj(t, LoginRequest{Username: "admin", Password: "wrong"}),
			wantCode: http.StatusBadRequest,
			wantData: marshalObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name:     "no credentials",
			method:   http.MethodPost,
			path:     "/login",
			body:     marshalObj(t, LoginRequest{}),
			wantCode: http.StatusBadRequest,
			wantData: marshalObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name:     "ok",
			path:     "/list/subjects",
			token:    f.teacherToken,
			accept:   "application/json",
			wantCode: http.StatusOK,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.serve(tt)
			checkCodeAndData(t, tt, rec)
			if tt.wantCode == http.StatusFound {
				assert.Equal(t, "/login", rec.Header().Get("Location"))
			}
		})
	}
}

func Test_loginLogout(t *testing.T) {
	f := setup(t)

	rec := f.serve(httpTest{
		method: http.MethodPost,
		path:   "/login",
		body:   marshalObj(t, LoginRequest{Username: "admin", Password: "Adm1n-pwd!"}),
	})
	if !assert.Equal(t, http.StatusOK, rec.Code) {
		return
	}
	var resp LoginResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)

	cookies := rec.Result().Cookies()
	if !assert.Len(t, cookies, 1) {
		return
	}
	assert.Equal(t, "session", cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)

	// the cookie alone authenticates page requests
	req := httptest.NewRequest(http.MethodGet, "/list/subjects", nil)
	req.Header.Set("Accept", "text/html")
	req.AddCookie(cookies[0])
	rec = httptest.NewRecorder()
	f.app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Logout (admin)")

	rec = f.serve(httpTest{method: http.MethodPost, path: "/logout", token: resp.Token})
	assert.Equal(t, http.StatusNoContent, rec.Code)

	// the token is revoked
	rec = f.serve(httpTest{path: "/list/subjects", token: resp.Token, accept: "application/json"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	// other sessions are not
	rec = f.serve(httpTest{path: "/list/subjects", token: f.adminToken, accept: "application/json"})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func Test_loginForm(t *testing.T) {
	f := setup(t)

	rec := f.serve(httpTest{path: "/login", accept: "text/html"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `name="password"`)

	rec = f.serve(httpTest{
		method: http.MethodPost,
		path:   "/login",
		form:   url.Values{"username": {"jdoe"}, "password": {"Teach3r-pwd!"}},
		accept: "text/html",
	})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	rec = f.serve(httpTest{
		method: http.MethodPost,
		path:   "/login",
		form:   url.Values{"username": {"jdoe"}, "password": {"nope"}},
		accept: "text/html",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "authentication failed")
}

func Test_roleGate(t *testing.T) {
	f := setup(t)
	f.seed.SeedExams(t, f.seed.Lessons[0], 1)
	controls := []string{`data-action="create"`, `data-action="update"`, `data-action="delete"`, `data-action="export"`}

	for _, kind := range []school.Kind{
		school.Teachers, school.Students, school.Parents, school.Subjects, school.Classes, school.Lessons, school.Exams,
	} {
		t.Run(string(kind), func(t *testing.T) {
			rec := f.serve(httpTest{path: "/list/" + string(kind), token: f.adminToken, accept: "text/html"})
			if assert.Equal(t, http.StatusOK, rec.Code) {
				assert.True(t, contains(rec.Body.String(), controls...), "admin should see the mutation controls")
			}

			rec = f.serve(httpTest{path: "/list/" + string(kind), token: f.teacherToken, accept: "text/html"})
			if assert.Equal(t, http.StatusOK, rec.Code) {
				for _, ctrl := range controls {
					assert.NotContains(t, rec.Body.String(), ctrl)
				}
			}
		})
	}
}

func Test_nonAdminMutations(t *testing.T) {
	f := setup(t)
	forbidden := marshalObj(t, httpErr{Error: "permission denied"})

	tests := []httpTest{
		{
			name:   "create",
			method: http.MethodPost,
			path:   "/list/subjects",
			form:   url.Values{"name": {"Physics"}},
		},
		{
			name:   "update",
			method: http.MethodPut,
			path:   "/list/subjects/1",
			form:   url.Values{"name": {"Physics"}},
		},
		{
			name:   "delete",
			method: http.MethodDelete,
			path:   "/list/subjects/2",
		},
		{
			name:   "delete via form override",
			method: http.MethodPost,
			path:   "/list/subjects/2",
			form:   url.Values{"_method": {http.MethodDelete}},
		},
		{
			name: "modal",
			path: "/list/subjects/modal?type=create",
		},
		{
			name: "export",
			path: "/list/subjects/export",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.token = f.teacherToken
			tt.wantCode = http.StatusForbidden
			tt.wantData = forbidden
			checkCodeAndData(t, tt, f.serve(tt))

			_, res := f.list(t, "/list/subjects", f.teacherToken)
			assert.Equal(t, 2, res.Count)
		})
	}
}

func Test_list(t *testing.T) {
	f := setup(t)
	f.seed.SeedExams(t, f.seed.Lessons[0], 15)
	f.seed.SeedExams(t, f.seed.Lessons[1], 3)

	tests := []struct {
		name      string
		path      string
		wantCode  int
		wantCount int
		wantRows  int
		wantFirst string
	}{
		{name: "search, page 2", path: "/list/exams?search=algebra&page=2", wantCode: http.StatusOK, wantCount: 15, wantRows: 5},
		{name: "no filter", path: "/list/exams", wantCode: http.StatusOK, wantCount: 18, wantRows: 10},
		{name: "unknown param", path: "/list/exams?lol=1", wantCode: http.StatusOK, wantCount: 18, wantRows: 10},
		{name: "teacher filter", path: "/list/exams?teacherId=t-2", wantCode: http.StatusOK, wantCount: 3, wantRows: 3},
		{name: "case-insensitive search", path: "/list/exams?search=HISTORY", wantCode: http.StatusOK, wantCount: 3, wantRows: 3},
		{name: "ordering", path: "/list/exams?ordering=-title", wantCode: http.StatusOK, wantCount: 18, wantRows: 10, wantFirst: "Exam 15"},
		{name: "page past the end", path: "/list/exams?page=9", wantCode: http.StatusOK, wantCount: 18, wantRows: 0},
		{name: "bad class id", path: "/list/exams?classId=abc", wantCode: http.StatusBadRequest},
		{name: "bad page", path: "/list/exams?page=abc", wantCode: http.StatusBadRequest},
		{name: "page zero", path: "/list/exams?page=0", wantCode: http.StatusBadRequest},
		{name: "page overflowing the offset", path: "/list/exams?page=922337203685477582", wantCode: http.StatusBadRequest},
		{name: "unknown entity", path: "/list/lol", wantCode: http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, res := f.list(t, tt.path, f.teacherToken)
			if !assert.Equal(t, tt.wantCode, code) || code != http.StatusOK {
				return
			}
			assert.Equal(t, tt.wantCount, res.Count)
			assert.Len(t, res.Rows, tt.wantRows)
			if tt.wantFirst != "" {
				assert.Equal(t, tt.wantFirst, res.Rows[0]["title"])
			}
		})
	}
}

func Test_listParseError(t *testing.T) {
	f := setup(t)
	last := listing.MaxPage(10)

	tests := []httpTest{
		{
			name:     "class id",
			path:     "/list/exams?classId=abc",
			wantData: marshalObj(t, httpErr{Error: `invalid classId "abc": expected integer`}),
		},
		{
			name:     "page below 1",
			path:     "/list/exams?page=0",
			wantData: marshalObj(t, httpErr{Error: `invalid page "0": expected integer >= 1`}),
		},
		{
			name:     "page past the addressable rows",
			path:     fmt.Sprintf("/list/exams?page=%d", last+1),
			wantData: marshalObj(t, httpErr{Error: fmt.Sprintf(`invalid page "%d": expected integer <= %d`, last+1, last)}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.token = f.adminToken
			tt.accept = "application/json"
			tt.wantCode = http.StatusBadRequest
			checkCodeAndData(t, tt, f.serve(tt))
		})
	}

	// the last addressable page is empty, not a fault
	code, res := f.list(t, fmt.Sprintf("/list/exams?page=%d", last), f.adminToken)
	assert.Equal(t, http.StatusOK, code)
	assert.Empty(t, res.Rows)
}

func Test_subjectCRUD(t *testing.T) {
	f := setup(t)

	tests := []httpTest{
		{
			name:     "create",
			method:   http.MethodPost,
			path:     "/list/subjects",
			form:     url.Values{"name": {"Physics"}},
			wantCode: http.StatusCreated,
			wantData: []byte(`{"id":"3"}`),
		},
		{
			name:     "create, empty name",
			method:   http.MethodPost,
			path:     "/list/subjects",
			form:     url.Values{"name": {""}},
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"name":"Name is required!"}`),
		},
		{
			name:     "create, duplicate name",
			method:   http.MethodPost,
			path:     "/list/subjects",
			form:     url.Values{"name": {"Algebra"}},
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"name":"Name already exists!"}`),
		},
		{
			name:     "update",
			method:   http.MethodPut,
			path:     "/list/subjects/3",
			form:     url.Values{"name": {"Chemistry"}},
			wantCode: http.StatusOK,
			wantData: []byte(`{"id":"3"}`),
		},
		{
			name:     "update via form override",
			method:   http.MethodPost,
			path:     "/list/subjects/3",
			form:     url.Values{"_method": {http.MethodPut}, "name": {"Biology"}},
			wantCode: http.StatusOK,
			wantData: []byte(`{"id":"3"}`),
		},
		{
			name:     "update, unknown key",
			method:   http.MethodPut,
			path:     "/list/subjects/999",
			form:     url.Values{"name": {"Geology"}},
			wantCode: http.StatusNotFound,
		},
		{
			name:     "delete, still in use",
			method:   http.MethodDelete,
			path:     "/list/subjects/1",
			wantCode: http.StatusConflict,
			wantData: marshalObj(t, httpErr{Error: "record is still in use"}),
		},
		{
			name:     "delete",
			method:   http.MethodDelete,
			path:     "/list/subjects/3",
			wantCode: http.StatusNoContent,
		},
		{
			name:     "delete again",
			method:   http.MethodDelete,
			path:     "/list/subjects/3",
			wantCode: http.StatusNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.token = f.adminToken
			checkCodeAndData(t, tt, f.serve(tt))
		})
	}

	_, res := f.list(t, "/list/subjects", f.adminToken)
	assert.Equal(t, 2, res.Count)
}

func Test_bindError(t *testing.T) {
	f := setup(t)
	tt := httpTest{
		method:   http.MethodPost,
		path:     "/list/lessons",
		form:     url.Values{"name": {"Lesson 3"}, "classId": {"abc"}},
		token:    f.adminToken,
		wantCode: http.StatusBadRequest,
	}
	checkCodeAndData(t, tt, f.serve(tt))
}

// 1x1 transparent PNG
var pngPixel = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d, 0x49, 0x48, 0x44, 0x52,
	0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01, 0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4,
	0x89, 0x00, 0x00, 0x00, 0x0d, 0x49, 0x44, 0x41, 0x54, 0x78, 0x9c, 0x63, 0x00, 0x01, 0x00, 0x00,
	0x05, 0x00, 0x01, 0x0d, 0x0a, 0x2d, 0xb4, 0x00, 0x00, 0x00, 0x00, 0x49, 0x45, 0x4e, 0x44, 0xae,
	0x42, 0x60, 0x82,
}

func Test_createTeacherWithImage(t *testing.T) {
	f := setup(t)

	body, contentType := multipartBody(t, map[string]string{
		"username":  "jsmith",
		"email":     "jsmith@school.test",
		"password":  "S3cret-pwd!",
		"firstName": "Jane",
		"lastName":  "Smith",
		"phone":     "+1-555-0199",
		"address":   "2 School Road",
		"bloodType": "A+",
		"birthday":  "1991-03-04",
		"sex":       "female",
	}, pngPixel)
	req := httptest.NewRequest(http.MethodPost, "/list/teachers", bytes.NewReader(body))
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+f.adminToken)
	rec := httptest.NewRecorder()
	f.app.ServeHTTP(rec, req)
	if !assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String()) {
		return
	}
	var key struct {
		ID string `json:"id"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &key))

	assert.NotEmpty(t, key.ID)

	_, res := f.list(t, "/list/teachers", f.adminToken)
	var img string
	for _, row := range res.Rows {
		if row["username"] == "jsmith" {
			img, _ = row["img"].(string)
		}
	}
	if !assert.True(t, strings.HasSuffix(img, ".png"), "img = %q", img) {
		return
	}

	rec = f.serve(httpTest{path: "/media/" + img})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, pngPixel, rec.Body.Bytes())
}

func Test_modal(t *testing.T) {
	f := setup(t)

	tests := []struct {
		name     string
		path     string
		wantCode int
		want     []string
	}{
		{
			name:     "create",
			path:     "/list/teachers/modal?type=create",
			wantCode: http.StatusOK,
			want:     []string{"Create new teacher", "<legend>Authentication Information</legend>", `enctype="multipart/form-data"`, `action="/list/teachers"`},
		},
		{
			name:     "update",
			path:     "/list/teachers/modal?type=update&id=t-1",
			wantCode: http.StatusOK,
			want:     []string{"Update the teacher", `value="jdoe"`, `name="_method" value="PUT"`, `action="/list/teachers/t-1"`},
		},
		{
			name:     "delete",
			path:     "/list/subjects/modal?type=delete&id=1",
			wantCode: http.StatusOK,
			want:     []string{"Are you sure you want to delete this subject?", `name="_method" value="DELETE"`, `action="/list/subjects/1"`},
		},
		{name: "bad type", path: "/list/subjects/modal?type=lol", wantCode: http.StatusBadRequest},
		{name: "unknown id", path: "/list/subjects/modal?type=update&id=999", wantCode: http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.serve(httpTest{path: tt.path, token: f.adminToken, accept: "text/html"})
			assert.Equal(t, tt.wantCode, rec.Code)
			for _, w := range tt.want {
				assert.Contains(t, rec.Body.String(), w)
			}
		})
	}
}

func Test_export(t *testing.T) {
	f := setup(t)
	f.seed.SeedExams(t, f.seed.Lessons[0], 12)
	f.seed.SeedExams(t, f.seed.Lessons[1], 3)

	rec := f.serve(httpTest{path: "/list/exams/export?search=history&page=3", token: f.adminToken})
	if !assert.Equal(t, http.StatusOK, rec.Code) {
		return
	}
	assert.Contains(t, rec.Header().Get("Content-Disposition"), `filename="exams.xlsx"`)

	xlsx, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	if !assert.NoError(t, err) {
		return
	}
	defer func() { _ = xlsx.Close() }()
	rows, err := xlsx.GetRows("All Exams")
	if !assert.NoError(t, err) {
		return
	}
	if assert.Len(t, rows, 4) {
		assert.Equal(t, []string{"Subject Name", "Class", "Teacher", "Date"}, rows[0])
		assert.Equal(t, "History", rows[1][0])
		assert.Equal(t, "2B", rows[1][1])
	}
}

func Test_storeGone(t *testing.T) {
	f := setup(t)
	if err := f.db.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}

	rec := f.serve(httpTest{path: "/list/subjects", token: f.adminToken, accept: "application/json"})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	select {
	case <-f.app.ShutdownSignal():
	case <-time.After(time.Second):
		t.Error("server was not asked to shut down")
	}
}

func Test_schedule(t *testing.T) {
	f := setup(t)

	type schedule struct {
		TeacherID string `json:"teacherId"`
		Days      []struct {
			Day     string `json:"day"`
			Lessons []struct {
				ID int `json:"id"`
			} `json:"lessons"`
		} `json:"days"`
	}
	get := func(t *testing.T, path, token string) schedule {
		rec := f.serve(httpTest{path: path, token: token, accept: "application/json"})
		var sch schedule
		if assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String()) {
			if err := json.Unmarshal(rec.Body.Bytes(), &sch); err != nil {
				t.Fatalf("json.Unmarshal() failed: %v", err)
			}
		}
		return sch
	}

	t.Run("teacher", func(t *testing.T) {
		sch := get(t, "/schedule", f.teacherToken)
		assert.Equal(t, f.seed.Teachers[0], sch.TeacherID)
		if assert.Len(t, sch.Days, len(school.Weekdays)) {
			assert.Equal(t, "MONDAY", sch.Days[0].Day)
			if assert.Len(t, sch.Days[0].Lessons, 1) {
				assert.Equal(t, f.seed.Lessons[0], sch.Days[0].Lessons[0].ID)
			}
			assert.Empty(t, sch.Days[4].Lessons)
		}
	})

	t.Run("admin", func(t *testing.T) {
		sch := get(t, "/schedule?teacherId="+f.seed.Teachers[1], f.adminToken)
		assert.Equal(t, f.seed.Teachers[1], sch.TeacherID)
		if assert.NotEmpty(t, sch.Days) && assert.Len(t, sch.Days[0].Lessons, 1) {
			assert.Equal(t, f.seed.Lessons[1], sch.Days[0].Lessons[0].ID)
		}
	})

	t.Run("page", func(t *testing.T) {
		rec := f.serve(httpTest{path: "/schedule", token: f.teacherToken, accept: "text/html"})
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, contains(rec.Body.String(), `data-day="MONDAY"`, `data-day="FRIDAY"`, "Algebra", "No lessons"))
	})

	tests := []httpTest{
		{name: "admin without teacher", path: "/schedule", token: f.adminToken, accept: "application/json", wantCode: http.StatusBadRequest},
		{name: "no token", path: "/schedule", accept: "application/json", wantCode: http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkCodeAndData(t, tt, f.serve(tt))
		})
	}
}
