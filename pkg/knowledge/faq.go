package knowledge

var defaultBase = New([]Entry{
	{
		Question: "What is the powerhouse of the cell?",
		Keywords: []string{"powerhouse", "cell", "mitochondrion"},
		Answer:   "The mitochondrion is known as the 'powerhouse' of the cell because it generates most of the cell's supply of ATP, used as a source of chemical energy.",
	},
	{
		Question: "What is photosynthesis?",
		Keywords: []string{"photosynthesis", "plants", "sunlight", "food"},
		Answer:   "Photosynthesis is the process plants use to convert light energy into chemical energy (food) by using sunlight, water, and carbon dioxide. It also produces oxygen!",
	},
	{
		Question: "How many planets are in the solar system?",
		Keywords: []string{"planets", "solar", "system", "how many"},
		Answer:   "There are eight planets in our Solar System: Mercury, Venus, Earth, Mars, Jupiter, Saturn, Uranus, and Neptune.",
	},
	{
		Question: "What is gravity?",
		Keywords: []string{"gravity", "force", "down"},
		Answer:   "Gravity is the force by which a planet or other body draws objects toward its center. It's what keeps you on the ground and what keeps the planets in orbit around the Sun.",
	},
})
