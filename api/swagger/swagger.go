package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "StudiProgress API",
        "description": "Single-user study-progress tracker: enrollments, examination attempts, grades and dashboard",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Auth", "description": "Login and password management"},
        {"name": "Students", "description": "Student account and study targets"},
        {"name": "Semester", "description": "Semester timeline"},
        {"name": "Catalog", "description": "Hochschulen, Studiengaenge, Module, Kurse"},
        {"name": "Enrollments", "description": "Module enrollments"},
        {"name": "Attempts", "description": "Examination attempts and grading"},
        {"name": "Dashboard", "description": "Aggregated study progress"},
        {"name": "Export", "description": "Transcript export"}
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Authenticate with email and password",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/auth/password": {
            "put": {
                "tags": ["Auth"],
                "summary": "Change password",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ChangePasswordRequest"}}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/students": {
            "get": {
                "tags": ["Students"],
                "summary": "List registered students",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Students"],
                "summary": "Register the student account",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RegisterStudentRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Email or Matrikelnummer already registered"}
                }
            }
        },
        "/students/{id}": {
            "get": {
                "tags": ["Students"],
                "summary": "Get the student profile",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Students"],
                "summary": "Update profile and study targets",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateStudentRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/students/{id}/exmatrikulation": {
            "put": {
                "tags": ["Students"],
                "summary": "Record the exmatriculation date",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ExmatrikulationRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/students/{id}/semester": {
            "get": {
                "tags": ["Semester"],
                "summary": "List the student's semesters",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Semester"],
                "summary": "Add a semester period",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateSemesterRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/hochschulen": {
            "get": {
                "tags": ["Catalog"],
                "summary": "List institutions",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Catalog"],
                "summary": "Create or resolve an institution by name",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"type": "object", "properties": {"name": {"type": "string"}}, "required": ["name"]}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/studiengaenge": {
            "get": {
                "tags": ["Catalog"],
                "summary": "List programs of study",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "hochschuleId", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Catalog"],
                "summary": "Create or resolve a program of study",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateStudiengangRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/module": {
            "get": {
                "tags": ["Catalog"],
                "summary": "List modules",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "studiengangId", "in": "query", "type": "string"},
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Catalog"],
                "summary": "Create a module with its courses",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateModulRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Module code already exists"}
                }
            }
        },
        "/module/{id}": {
            "get": {
                "tags": ["Catalog"],
                "summary": "Get a module",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/module/{id}/kurse": {
            "get": {
                "tags": ["Catalog"],
                "summary": "List courses of a module",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Catalog"],
                "summary": "Add a course to a module",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateKursRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/enrollments": {
            "get": {
                "tags": ["Enrollments"],
                "summary": "List enrollments",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "studentId", "in": "query", "type": "string"},
                    {"name": "modulId", "in": "query", "type": "string"},
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Enrollments"],
                "summary": "Enroll the student in a module",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/EnrollRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Already enrolled"}
                }
            }
        },
        "/enrollments/{id}": {
            "get": {
                "tags": ["Enrollments"],
                "summary": "Get enrollment detail with slots and attempts",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Enrollments"],
                "summary": "Delete an enrollment with its attempts",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/enrollments/{id}/attempts": {
            "post": {
                "tags": ["Attempts"],
                "summary": "Add an examination attempt to a specific slot",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateAttemptRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Out of order, attempt limit reached or enrollment closed"}
                }
            }
        },
        "/enrollments/{id}/attempts/auto": {
            "post": {
                "tags": ["Attempts"],
                "summary": "Add a graded attempt to the next open slot",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AutoAttemptRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "All slots resolved or enrollment closed"}
                }
            }
        },
        "/attempts/{id}/grade": {
            "put": {
                "tags": ["Attempts"],
                "summary": "Record the grade on a pending attempt",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/GradeAttemptRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Attempt already graded"}
                }
            }
        },
        "/dashboard": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "Get the study-progress dashboard",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/export/transcript": {
            "get": {
                "tags": ["Export"],
                "summary": "Export the transcript as CSV or PDF",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "File download"}
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            },
            "required": ["email", "password"]
        },
        "ChangePasswordRequest": {
            "type": "object",
            "properties": {
                "old_password": {"type": "string"},
                "new_password": {"type": "string"}
            },
            "required": ["old_password", "new_password"]
        },
        "RegisterStudentRequest": {
            "type": "object",
            "properties": {
                "vorname": {"type": "string"},
                "nachname": {"type": "string"},
                "matrikelnummer": {"type": "string"},
                "email": {"type": "string"},
                "password": {"type": "string"},
                "anzahl_semester": {"type": "integer"},
                "anzahl_module": {"type": "integer"},
                "start_datum": {"type": "string", "format": "date"},
                "ziel_datum": {"type": "string", "format": "date"},
                "ziel_note": {"type": "number"},
                "hochschule": {"type": "string"},
                "studiengang": {"type": "string"},
                "ects_gesamt": {"type": "integer"}
            },
            "required": ["vorname", "nachname", "matrikelnummer", "email", "password", "anzahl_semester", "anzahl_module", "start_datum", "ziel_datum", "hochschule", "studiengang", "ects_gesamt"]
        },
        "UpdateStudentRequest": {
            "type": "object",
            "properties": {
                "vorname": {"type": "string"},
                "nachname": {"type": "string"},
                "anzahl_semester": {"type": "integer"},
                "anzahl_module": {"type": "integer"},
                "ziel_datum": {"type": "string", "format": "date"},
                "ziel_note": {"type": "number"}
            }
        },
        "ExmatrikulationRequest": {
            "type": "object",
            "properties": {
                "datum": {"type": "string", "format": "date"}
            },
            "required": ["datum"]
        },
        "CreateSemesterRequest": {
            "type": "object",
            "properties": {
                "nummer": {"type": "integer"},
                "beginn": {"type": "string", "format": "date"},
                "ende": {"type": "string", "format": "date"}
            },
            "required": ["nummer", "beginn", "ende"]
        },
        "CreateStudiengangRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "hochschule": {"type": "string"},
                "ects_gesamt": {"type": "integer"}
            },
            "required": ["name", "hochschule", "ects_gesamt"]
        },
        "CreateModulRequest": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "name": {"type": "string"},
                "ects_punkte": {"type": "integer"},
                "studiengang_id": {"type": "string"},
                "kurse": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/CreateKursRequest"}
                }
            },
            "required": ["code", "name", "ects_punkte", "studiengang_id"]
        },
        "CreateKursRequest": {
            "type": "object",
            "properties": {
                "nummer": {"type": "string"},
                "name": {"type": "string"}
            },
            "required": ["nummer", "name"]
        },
        "EnrollRequest": {
            "type": "object",
            "properties": {
                "student_id": {"type": "string"},
                "modul_id": {"type": "string"},
                "anzahl_pruefungsleistungen": {"type": "integer"},
                "eingeschrieben_am": {"type": "string", "format": "date"},
                "gewichte": {"type": "array", "items": {"type": "number"}}
            },
            "required": ["student_id", "modul_id", "anzahl_pruefungsleistungen"]
        },
        "CreateAttemptRequest": {
            "type": "object",
            "properties": {
                "teilpruefung": {"type": "integer"},
                "versuch": {"type": "integer"},
                "gewicht": {"type": "number"},
                "note": {"type": "number"},
                "abgelegt_am": {"type": "string", "format": "date"}
            },
            "required": ["versuch", "gewicht"]
        },
        "AutoAttemptRequest": {
            "type": "object",
            "properties": {
                "note": {"type": "number"},
                "abgelegt_am": {"type": "string", "format": "date"},
                "gewicht": {"type": "number"}
            },
            "required": ["note", "abgelegt_am"]
        },
        "GradeAttemptRequest": {
            "type": "object",
            "properties": {
                "note": {"type": "number"},
                "abgelegt_am": {"type": "string", "format": "date"}
            },
            "required": ["note", "abgelegt_am"]
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
