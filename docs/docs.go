// Package docs 注册Swagger文档（swag init ./cmd/api 生成后覆盖本文件）
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
        "/api/v1/products": {
            "get": {
                "description": "返回目录商品及可用库存，支持分类和价格区间过滤；账本不存在时按目录初始化",
                "produces": ["application/json"],
                "tags": ["商品"],
                "summary": "商品列表",
                "parameters": [
                    {"type": "array", "items": {"type": "string"}, "collectionFormat": "multi", "description": "分类（可重复或逗号分隔）", "name": "category", "in": "query"},
                    {"type": "string", "description": "最低价格", "name": "min_price", "in": "query"},
                    {"type": "string", "description": "最高价格", "name": "max_price", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}},
                    "400": {"description": "参数错误", "schema": {"$ref": "#/definitions/response.Response"}},
                    "500": {"description": "商品目录不可用", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        },
        "/api/v1/products/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["商品"],
                "summary": "商品详情",
                "parameters": [{"type": "integer", "description": "商品ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}},
                    "404": {"description": "商品不存在", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        },
        "/api/v1/cart": {
            "get": {
                "produces": ["application/json"],
                "tags": ["购物车"],
                "summary": "查看购物车",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}}}
            }
        },
        "/api/v1/cart/items": {
            "post": {
                "description": "请求数量超过剩余库存时按剩余截断（clamped=true），剩余为0时返回库存不足",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["购物车"],
                "summary": "加入购物车",
                "parameters": [{"description": "商品与数量", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.AddItemRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}},
                    "404": {"description": "商品不存在", "schema": {"$ref": "#/definitions/response.Response"}},
                    "409": {"description": "库存不足 / 结算处理中", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        },
        "/api/v1/cart/items/{id}": {
            "patch": {
                "description": "数量下限为1；增加时按剩余库存批准，剩余为0时返回库存不足",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["购物车"],
                "summary": "修改购物车商品数量",
                "parameters": [
                    {"type": "integer", "description": "商品ID", "name": "id", "in": "path", "required": true},
                    {"description": "新数量", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.UpdateItemRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}},
                    "409": {"description": "库存不足 / 结算处理中", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            },
            "delete": {
                "description": "件数全部归还库存；商品不在购物车中时removed=false",
                "produces": ["application/json"],
                "tags": ["购物车"],
                "summary": "删除购物车商品",
                "parameters": [{"type": "integer", "description": "商品ID", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}}}
            }
        },
        "/api/v1/stock": {
            "get": {
                "produces": ["application/json"],
                "tags": ["库存"],
                "summary": "库存总览",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}}}
            }
        },
        "/api/v1/stock/reset": {
            "post": {
                "description": "按目录基础库存减去当前购物车重新推导账本，会覆盖其他上下文的预留，需要confirm=true",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["库存"],
                "summary": "重置库存账本",
                "parameters": [{"description": "确认", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.ResetStockRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}},
                    "409": {"description": "未确认", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        },
        "/api/v1/checkout/quote": {
            "post": {
                "produces": ["application/json"],
                "tags": ["结算"],
                "summary": "结算报价",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}},
                    "409": {"description": "购物车为空", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        },
        "/api/v1/checkout": {
            "post": {
                "description": "进入处理状态，等待模拟支付完成后清空购物车；库存不归还",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["结算"],
                "summary": "模拟支付",
                "parameters": [{"description": "支付方式", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.PayRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}},
                    "409": {"description": "购物车为空 / 未选择支付方式 / 处理中", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        },
        "/api/v1/events": {
            "get": {
                "description": "SSE流：ready（连接建立）、change（账本或购物车变化）、ping（心跳）",
                "produces": ["text/event-stream"],
                "tags": ["推送"],
                "summary": "订阅变更信号",
                "responses": {}
            }
        }
    },
    "definitions": {
        "dto.AddItemRequest": {
            "type": "object",
            "required": ["product_id", "quantity"],
            "properties": {
                "product_id": {"type": "integer", "example": 1},
                "quantity": {"type": "integer", "example": 2}
            }
        },
        "dto.UpdateItemRequest": {
            "type": "object",
            "required": ["quantity"],
            "properties": {"quantity": {"type": "integer", "example": 3}}
        },
        "dto.ResetStockRequest": {
            "type": "object",
            "properties": {"confirm": {"type": "boolean", "example": true}}
        },
        "dto.PayRequest": {
            "type": "object",
            "properties": {"method": {"type": "string", "example": "credit-card"}}
        },
        "response.Response": {
            "type": "object",
            "properties": {
                "code": {"type": "integer"},
                "data": {},
                "message": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo 文档元信息
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{"http"},
	Title:            "Storefront API",
	Description:      "商品目录、购物车、库存账本与模拟结算",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
