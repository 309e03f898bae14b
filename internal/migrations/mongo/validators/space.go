package validators

import "go.mongodb.org/mongo-driver/bson"

const timeOfDayPattern = `^([01][0-9]|2[0-3])-[0-5][0-9]$|^24-00$`

var SpaceValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"title",
			"price_per_hour",
			"address",
			"operating_start",
			"operating_end",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "long",
				"minimum":  1,
			},

			"title": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 100,
			},

			"price_per_hour": bson.M{
				"bsonType":         "double",
				"exclusiveMinimum": true,
				"minimum":          0,
			},

			"image_url": bson.M{
				"bsonType":  "string",
				"maxLength": 2048,
			},

			"address": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 200,
			},

			"description": bson.M{
				"bsonType":  "string",
				"maxLength": 2000,
			},

			"operating_start": bson.M{
				"bsonType": "string",
				"pattern":  timeOfDayPattern,
			},

			"operating_end": bson.M{
				"bsonType": "string",
				"pattern":  timeOfDayPattern,
			},

			"created_at": bson.M{"bsonType": "date"},
			"updated_at": bson.M{"bsonType": "date"},
		},
	},
}
