// Package docs registers the OpenAPI document served at /swagger/.
// Regenerate with: swag init -g cmd/catalog-service/main.go
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/products": {
            "get": {
                "produces": ["application/json"],
                "tags": ["products"],
                "summary": "List in-stock products",
                "parameters": [
                    {"type": "string", "description": "only this category", "name": "category", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/product.Product"}}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/product.HTTPError"}}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["products"],
                "summary": "Create a product",
                "parameters": [
                    {"description": "product", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/product.CreateProductRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/product.Product"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/product.HTTPError"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/product.HTTPError"}}
                }
            }
        },
        "/products/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["products"],
                "summary": "Get a product",
                "parameters": [
                    {"type": "integer", "description": "product id", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/product.Product"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/product.HTTPError"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/product.HTTPError"}}
                }
            },
            "put": {
                "description": "Only the fields present in the body change; updated_at is always refreshed.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["products"],
                "summary": "Partially update a product",
                "parameters": [
                    {"type": "integer", "description": "product id", "name": "id", "in": "path", "required": true},
                    {"description": "fields to change", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/product.UpdateProductRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/product.Product"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/product.HTTPError"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/product.HTTPError"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/product.HTTPError"}}
                }
            },
            "delete": {
                "produces": ["application/json"],
                "tags": ["products"],
                "summary": "Delete a product",
                "parameters": [
                    {"type": "integer", "description": "product id", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/product.MessageResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/product.HTTPError"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/product.HTTPError"}}
                }
            }
        },
        "/products/{id}/related": {
            "get": {
                "produces": ["application/json"],
                "tags": ["products"],
                "summary": "Other in-stock products from the same category",
                "parameters": [
                    {"type": "integer", "description": "product id", "name": "id", "in": "path", "required": true},
                    {"type": "integer", "description": "1..20, default 3", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/product.Product"}}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/product.HTTPError"}}
                }
            }
        },
        "/categories/{category}/products": {
            "get": {
                "produces": ["application/json"],
                "tags": ["products"],
                "summary": "List in-stock products of one category",
                "parameters": [
                    {"type": "string", "description": "category", "name": "category", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/product.Product"}}}
                }
            }
        },
        "/cart": {
            "post": {
                "produces": ["application/json"],
                "tags": ["cart"],
                "summary": "Start a browsing session with an empty cart",
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/main.CartResponse"}}
                }
            }
        },
        "/cart/{sid}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["cart"],
                "summary": "View a cart",
                "parameters": [
                    {"type": "string", "description": "session id", "name": "sid", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/main.CartResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/product.HTTPError"}}
                }
            },
            "delete": {
                "produces": ["application/json"],
                "tags": ["cart"],
                "summary": "End a browsing session and discard its cart",
                "parameters": [
                    {"type": "string", "description": "session id", "name": "sid", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/product.MessageResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/product.HTTPError"}}
                }
            }
        },
        "/cart/{sid}/items": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["cart"],
                "description": "The quantity is clamped to [1, stock not yet in the cart]; 400 when none is left.",
                "summary": "Add a product to the cart",
                "parameters": [
                    {"type": "string", "description": "session id", "name": "sid", "in": "path", "required": true},
                    {"description": "item", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/main.AddCartItemRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/main.CartResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/product.HTTPError"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/product.HTTPError"}}
                }
            }
        },
        "/cart/{sid}/items/{pid}": {
            "put": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["cart"],
                "summary": "Set the quantity of a cart line",
                "parameters": [
                    {"type": "string", "description": "session id", "name": "sid", "in": "path", "required": true},
                    {"type": "integer", "description": "product id", "name": "pid", "in": "path", "required": true},
                    {"description": "quantity", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/main.SetQuantityRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/main.CartResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/product.HTTPError"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/product.HTTPError"}}
                }
            },
            "delete": {
                "produces": ["application/json"],
                "tags": ["cart"],
                "summary": "Remove a product from the cart",
                "parameters": [
                    {"type": "string", "description": "session id", "name": "sid", "in": "path", "required": true},
                    {"type": "integer", "description": "product id", "name": "pid", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/main.CartResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/product.HTTPError"}}
                }
            }
        }
    },
    "definitions": {
        "product.Product": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "name": {"type": "string"},
                "description": {"type": "string"},
                "price": {"type": "string", "example": "24.99"},
                "unit": {"type": "string", "example": "per kg"},
                "category": {"type": "string", "example": "fruits"},
                "emoji": {"type": "string"},
                "stock_quantity": {"type": "integer"},
                "image_url": {"type": "string"},
                "created_at": {"type": "string"},
                "updated_at": {"type": "string"}
            }
        },
        "product.CreateProductRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string", "example": "Apple"},
                "description": {"type": "string", "example": "Crisp red apples from the orchard"},
                "price": {"type": "string", "example": "24.99"},
                "unit": {"type": "string", "example": "per kg"},
                "category": {"type": "string", "example": "fruits"},
                "emoji": {"type": "string"},
                "stock_quantity": {"type": "integer", "example": 40}
            }
        },
        "product.UpdateProductRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "description": {"type": "string"},
                "price": {"type": "string", "example": "19.50"},
                "unit": {"type": "string"},
                "category": {"type": "string"},
                "emoji": {"type": "string"},
                "stock_quantity": {"type": "integer"}
            }
        },
        "product.HTTPError": {
            "type": "object",
            "properties": {
                "error": {"type": "string", "example": "Product not found"}
            }
        },
        "product.MessageResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string", "example": "Product deleted successfully"}
            }
        },
        "main.AddCartItemRequest": {
            "type": "object",
            "properties": {
                "product_id": {"type": "integer", "example": 1},
                "quantity": {"type": "integer", "example": 2}
            }
        },
        "main.SetQuantityRequest": {
            "type": "object",
            "properties": {
                "quantity": {"type": "integer", "example": 3}
            }
        },
        "main.CartResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "lines": {"type": "array", "items": {"$ref": "#/definitions/cart.Line"}},
                "item_count": {"type": "integer"},
                "total_price": {"type": "string", "example": "25.00"},
                "display_total": {"type": "string", "example": "R25.00"}
            }
        },
        "cart.Line": {
            "type": "object",
            "properties": {
                "product_id": {"type": "integer"},
                "name": {"type": "string"},
                "price": {"type": "string"},
                "unit": {"type": "string"},
                "image_url": {"type": "string"},
                "quantity": {"type": "integer"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Farm Market Catalog API",
	Description:      "Product catalog and browsing-session carts for the farm market storefront.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
