package validators

import "go.mongodb.org/mongo-driver/bson"

var OrderValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"number", "client_id", "items", "total", "currency", "status", "created_at"},
		"additionalProperties": true,
		"properties": bson.M{
			"_id":          bson.M{"bsonType": "objectId"},
			"number":       bson.M{"bsonType": "string", "pattern": `^ORD-[0-9A-F]{8}$`},
			"client_id":    bson.M{"bsonType": "string"},
			"client_phone": bson.M{"bsonType": "string"},
			"items": bson.M{
				"bsonType": "array",
				"minItems": 1,
				"maxItems": 50,
				"items": bson.M{
					"bsonType": "object",
					"required": []string{"service", "price"},
					"properties": bson.M{
						"service": bson.M{"bsonType": "string"},
						"price":   bson.M{"bsonType": "long", "minimum": 0},
					},
				},
			},
			"total":      bson.M{"bsonType": "long", "minimum": 0},
			"currency":   bson.M{"bsonType": "string", "minLength": 3, "maxLength": 3},
			"status":     bson.M{"enum": []string{"pending", "in_progress", "done", "cancelled"}},
			"created_at": bson.M{"bsonType": "date"},
			"updated_at": bson.M{"bsonType": "date"},
		},
	},
}
