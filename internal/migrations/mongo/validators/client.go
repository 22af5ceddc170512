package validators

import "go.mongodb.org/mongo-driver/bson"

// DisplayPhonePattern matches the stored phone form, +7 (XXX) XXX-XX-XX.
const DisplayPhonePattern = `^\+7 \([0-9]{3}\) [0-9]{3}-[0-9]{2}-[0-9]{2}$`

var ClientValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"name", "phone", "phone_digits", "created_at"},
		"additionalProperties": true,
		"properties": bson.M{
			"_id":          bson.M{"bsonType": "objectId"},
			"name":         bson.M{"bsonType": "string", "minLength": 2, "maxLength": 100},
			"phone":        bson.M{"bsonType": "string", "pattern": DisplayPhonePattern},
			"phone_digits": bson.M{"bsonType": "string", "pattern": `^7[0-9]{10}$`},
			"email":        bson.M{"bsonType": "string"},
			"cars": bson.M{
				"bsonType": "array",
				"maxItems": 10,
				"items": bson.M{
					"bsonType": "object",
					"required": []string{"make", "model"},
				},
			},
			"region":     bson.M{"bsonType": "string", "minLength": 2, "maxLength": 2},
			"time_zone":  bson.M{"bsonType": "string"},
			"created_at": bson.M{"bsonType": "date"},
			"updated_at": bson.M{"bsonType": "date"},
		},
	},
}
