package validators

import "go.mongodb.org/mongo-driver/bson"

var CallbackValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"name", "phone", "source", "status", "created_at"},
		"additionalProperties": true,
		"properties": bson.M{
			"_id":        bson.M{"bsonType": "objectId"},
			"name":       bson.M{"bsonType": "string"},
			"phone":      bson.M{"bsonType": "string", "pattern": DisplayPhonePattern},
			"message":    bson.M{"bsonType": "string", "maxLength": 2000},
			"source":     bson.M{"enum": []string{"site", "admin", "desktop"}},
			"status":     bson.M{"enum": []string{"new", "contacted", "closed"}},
			"client_id":  bson.M{"bsonType": "string"},
			"created_at": bson.M{"bsonType": "date"},
			"updated_at": bson.M{"bsonType": "date"},
		},
	},
}
