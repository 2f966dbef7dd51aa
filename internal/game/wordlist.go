package game

// builtinWords is the stock drawing vocabulary. Kept lowercase; multi-word
// entries use single spaces.
var builtinWords = []string{
	"apple", "banana", "cherry", "grapes", "lemon", "orange", "peach",
	"pineapple", "strawberry", "watermelon", "carrot", "mushroom", "onion",
	"pumpkin", "tomato", "bread", "cheese", "cookie", "donut", "hamburger",
	"hot dog", "ice cream", "pizza", "popcorn", "sandwich", "spaghetti",
	"taco", "cake", "pancake", "egg",
	"ant", "bear", "bee", "butterfly", "camel", "cat", "chicken", "cow",
	"crab", "crocodile", "dog", "dolphin", "duck", "elephant", "fish",
	"flamingo", "fox", "frog", "giraffe", "goat", "hedgehog", "horse",
	"jellyfish", "kangaroo", "koala", "lion", "monkey", "mouse", "octopus",
	"owl", "panda", "parrot", "penguin", "pig", "rabbit", "shark", "sheep",
	"snail", "snake", "spider", "squirrel", "tiger", "turtle", "whale",
	"zebra",
	"airplane", "ambulance", "bicycle", "boat", "bus", "car", "helicopter",
	"motorcycle", "rocket", "sailboat", "skateboard", "submarine", "tractor",
	"train", "truck",
	"anchor", "backpack", "balloon", "basket", "bell", "book", "bottle",
	"bridge", "broom", "brush", "bucket", "camera", "candle", "chair",
	"clock", "compass", "crown", "cup", "door", "drum", "envelope",
	"flashlight", "fork", "glasses", "guitar", "hammer", "hat", "key",
	"kite", "ladder", "lamp", "magnet", "mirror", "pencil", "piano",
	"pillow", "scissors", "shovel", "spoon", "suitcase", "telescope",
	"toothbrush", "umbrella", "violin", "wheel",
	"beach", "castle", "cave", "desert", "forest", "island",
	"lighthouse", "mountain", "rainbow", "river", "volcano", "waterfall",
	"windmill",
	"angel", "astronaut", "clown", "cowboy", "dentist", "firefighter",
	"ghost", "king", "mermaid", "ninja", "pirate", "police officer",
	"queen", "robot", "scarecrow", "snowman", "vampire", "wizard",
	"basketball", "bowling", "boxing", "chess", "fishing", "golf",
	"juggling", "skiing", "soccer", "surfing", "swimming", "tennis",
	"campfire", "cloud", "earthquake", "lightning", "moon", "snowflake",
	"star", "sun", "tornado",
}
